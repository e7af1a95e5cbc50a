package response

import (
	"fmt"
	"html"
	"os"
	"path"
	"strings"
)

const listingStyle = `body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; margin: 2em; background-color: #f9f9f9; color: #333; }
h1 { color: #111; }
ul { list-style-type: none; padding: 0; }
li { display: flex; justify-content: space-between; padding: 10px; border-bottom: 1px solid #eee; }
li:hover { background-color: #f0f0f0; }
a { text-decoration: none; color: #007aff; }
.dir a { font-weight: bold; }
.size { color: #888; font-size: 0.9em; text-align: right; }`

// Directory builds a 200 text/html response listing the immediate
// entries of dirPath. Hrefs are built from reqPath, the path the
// client asked for, so links stay relative to wherever the server
// is mounted. Entries come out in name order. A directory gone
// since resolution stat'd it is an ordinary race and maps to 404;
// any other listing failure is a 500.
func Directory(dirPath, reqPath string) *Response {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		if os.IsNotExist(err) {
			return Error(StatusNotFound)
		}
		return Error(StatusInternalServerError)
	}

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html><html><head><title>File List</title><style>")
	sb.WriteString(listingStyle)
	sb.WriteString("</style></head><body>")
	fmt.Fprintf(&sb, "<h1>Index of %s</h1><ul>", html.EscapeString(reqPath))

	if reqPath != "/" {
		parent := path.Dir(strings.TrimSuffix(reqPath, "/"))
		fmt.Fprintf(&sb,
			"<li class='dir'><a href='%s'>.. (Parent Directory)</a><span class='size'></span></li>",
			html.EscapeString(parent))
	}

	for _, entry := range entries {
		if !entry.IsDir() && !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()
		href := html.EscapeString(joinRequestPath(reqPath, name))

		class, size := "file", ""
		if entry.IsDir() {
			class, size = "dir", "&lt;DIR&gt;"
		} else if info, err := entry.Info(); err == nil {
			size = fmt.Sprintf("%d bytes", info.Size())
		}

		fmt.Fprintf(&sb,
			"<li class='%s'><a href='%s'>%s</a><span class='size'>%s</span></li>",
			class, href, html.EscapeString(name), size)
	}

	sb.WriteString("</ul></body></html>")

	res := &Response{Status: StatusOK}
	res.setBody([]byte(sb.String()), "text/html")
	return res
}

func joinRequestPath(reqPath, name string) string {
	if strings.HasSuffix(reqPath, "/") {
		return reqPath + name
	}
	return reqPath + "/" + name
}
