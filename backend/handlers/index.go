package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/a-h/templ"
)

// Greeting is the static landing page.
var Greeting = templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
	_, err := io.WriteString(w, "<h1 style='color:red;'>Hello World!</h1>")
	return err
})

func Index() http.Handler {
	return templ.Handler(Greeting)
}

func Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
