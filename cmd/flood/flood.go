// Command flood fires concurrent one-shot GET requests at a
// running file-server, for eyeballing pool backpressure under
// load.
package main

import (
	"flag"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func fetch(addr, target string) (int64, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	if _, err := fmt.Fprintf(conn, "GET %s HTTP/1.0\r\n\r\n", target); err != nil {
		return 0, err
	}
	return io.Copy(io.Discard, conn)
}

func main() {
	addr := flag.String("addr", "127.0.0.1:8123", "server host:port")
	target := flag.String("target", "/", "request target")
	clients := flag.Int("clients", 64, "number of concurrent clients")
	flag.Parse()

	start := time.Now()

	var g errgroup.Group
	for i := 0; i < *clients; i++ {
		g.Go(func() error {
			n, err := fetch(*addr, *target)
			if err != nil {
				return err
			}
			log.Debugf("read %d bytes", n)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatalf("flood failed: %v", err)
	}

	elapsed := time.Since(start)
	log.Infof("%d x GET %s in %s (%.1f req/s)",
		*clients, strings.TrimSpace(*target), elapsed,
		float64(*clients)/elapsed.Seconds())
}
