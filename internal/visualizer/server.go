// Package visualizer serves a backtest log to the hosted web visualizer.
// The visualizer fetches the log cross-origin, so the server answers with
// permissive CORS headers.
package visualizer

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/rs/cors"
)

const BaseURL = "https://jmerle.github.io/imc-prosperity-3-visualizer"

// Serve exposes the log file over HTTP until ctx is cancelled. It prints
// the visualizer URL and makes a best-effort attempt to open it; auto-open
// is known to be unreliable in some browsers, so the URL is always printed.
func Serve(ctx context.Context, logPath, addr string, open bool) error {
	if _, err := os.Stat(logPath); err != nil {
		return fmt.Errorf("log file: %w", err)
	}

	name := filepath.Base(logPath)
	mux := http.NewServeMux()
	mux.HandleFunc("/"+name, func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, logPath)
	})

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	port := ln.Addr().(*net.TCPAddr).Port
	logURL := fmt.Sprintf("http://localhost:%d/%s", port, name)
	visURL := fmt.Sprintf("%s/?open=%s", BaseURL, url.QueryEscape(logURL))

	srv := &http.Server{Handler: cors.AllowAll().Handler(mux)}
	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()

	log.Printf("serving %s at %s", name, logURL)
	log.Printf("visualizer: %s", visURL)
	if open {
		if err := openBrowser(visURL); err != nil {
			log.Printf("could not open browser: %v", err)
		}
	}

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openBrowser(target string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", target).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", target).Start()
	default:
		return exec.Command("xdg-open", target).Start()
	}
}
