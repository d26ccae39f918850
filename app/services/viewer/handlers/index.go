package handlers

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"net/http"

	"github.com/ardanlabs/cerocoin/foundation/web"
)

//go:embed views/index.html
var views embed.FS

type index struct {
	page []byte
}

// newIndex renders the page once since the node list is fixed at startup.
func newIndex(build string, nodes []string) (*index, error) {
	tmpl, err := template.ParseFS(views, "views/index.html")
	if err != nil {
		return nil, err
	}

	data := struct {
		Build string
		Nodes []string
	}{
		Build: build,
		Nodes: nodes,
	}

	var b bytes.Buffer
	if err := tmpl.Execute(&b, data); err != nil {
		return nil, err
	}

	return &index{page: b.Bytes()}, nil
}

func (ig *index) handler(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if err := web.SetStatusCode(ctx, http.StatusOK); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, err := w.Write(ig.page)
	return err
}
