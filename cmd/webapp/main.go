package main

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/garciat/kinfer/check"
	"github.com/garciat/kinfer/compile"
	"github.com/garciat/kinfer/diag"
	"github.com/garciat/kinfer/files"
	"github.com/google/uuid"
)

//go:embed resources
var resources embed.FS

var (
	defaultContent string
	indexTemplate  *template.Template

	// Trace output goes through the package-level check.DebugWriter.
	traceMux sync.Mutex
)

func init() {
	data, err := resources.ReadFile("resources/default.kt")
	if err != nil {
		log.Fatal(err)
	}
	defaultContent, err = files.DecodeSource(data)
	if err != nil {
		log.Fatal(err)
	}
	indexTemplate = template.Must(template.ParseFS(resources, "resources/index.html"))
}

func main() {
	log.SetFlags(0)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", indexHandler)
	mux.HandleFunc("POST /check", checkHandler)

	port := getPort()
	addr := fmt.Sprintf("0.0.0.0:%s", port)

	log.Println("Listening on " + addr)
	log.Fatal(http.ListenAndServe(addr, logRequest(mux)))
}

func getPort() string {
	port, ok := os.LookupEnv("PORT")
	if !ok {
		return "8080"
	}
	return port
}

func indexHandler(w http.ResponseWriter, r *http.Request) {
	type Page struct {
		DefaultContent string
	}

	err := indexTemplate.Execute(w, Page{DefaultContent: defaultContent})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func checkHandler(w http.ResponseWriter, r *http.Request) {
	err := r.ParseMultipartForm(500 * 1024)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	filename := r.FormValue("filename")
	switch {
	case filename == "":
		fallthrough
	case !strings.HasSuffix(filename, ".kt"):
		fallthrough
	case strings.Contains(filename, "/"):
		http.Error(w, "invalid filename", http.StatusBadRequest)
		return
	default:
		// OK
	}

	code := r.FormValue("code")
	trace := r.FormValue("trace") != ""

	w.Header().Set("Content-Type", "text/plain")

	var out bytes.Buffer
	if trace {
		traceMux.Lock()
		check.DebugWriter = &out
		check.DebugUnify, check.DebugResolve, check.DebugChecker = true, true, true
		err = runCheck(r.Context(), &out, filename, code)
		check.DebugUnify, check.DebugResolve, check.DebugChecker = false, false, false
		check.DebugWriter = os.Stderr
		traceMux.Unlock()
	} else {
		err = runCheck(r.Context(), &out, filename, code)
	}
	if err != nil {
		fmt.Fprintf(&out, "ERROR: %v\n", err)
	}

	_, _ = w.Write(out.Bytes())
}

func runCheck(ctx context.Context, out *bytes.Buffer, filename, code string) error {
	unit := compile.NewCompilationUnit(1)
	if err := unit.AddSource(filename, code); err != nil {
		return err
	}
	results, err := unit.Compile(ctx)
	if err != nil {
		return err
	}

	formatter := diag.NewFormatter(out, diag.ColorNever)
	var all []diag.Diagnostic
	for _, result := range results {
		formatter.AddSource(result.File.Path, result.File.Text)
		formatter.FormatAll(result.Diagnostics)
		if result.Err != nil {
			return result.Err
		}
		all = append(all, result.Diagnostics...)
	}
	fmt.Fprintln(out, diag.Summary(all))
	return nil
}

func logRequest(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)
		log.Printf("%s %s %s %s\n", id, r.RemoteAddr, r.Method, r.URL)
		handler.ServeHTTP(w, r)
	})
}
