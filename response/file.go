package response

import (
	"mime"
	"os"
	"path/filepath"
	"strconv"
)

const fallbackType = "application/octet-stream"

// File builds a 200 response whose body streams the named file.
// The file vanishing between resolution and open is an ordinary
// race, so a missing file maps to 404; any other open or stat
// failure is the server's fault and maps to 500.
func File(path string) *Response {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Error(StatusNotFound)
		}
		return Error(StatusInternalServerError)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return Error(StatusInternalServerError)
	}

	res := &Response{Status: StatusOK, stream: f}
	res.SetHeader("Content-Type", typeByExtension(path))
	res.SetHeader("Content-Length", strconv.FormatInt(info.Size(), 10))
	return res
}

func typeByExtension(path string) string {
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		return t
	}
	return fallbackType
}
