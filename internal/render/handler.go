package render

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/conduit-lang/pagemeta/internal/logging"
	"github.com/conduit-lang/pagemeta/internal/web/stream"
)

// DocumentRenderer renders a document frame by frame
type DocumentRenderer interface {
	Render(ctx context.Context, req Request, emit func(Frame) error) (*Document, error)
}

// Handler streams documents as NDJSON: the head frame is flushed before the
// boundary frame is computed. Requests for unmatched paths answer 404.
func Handler(renderer DocumentRenderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := logging.FromContext(r.Context())

		s, err := stream.New(w)
		if err != nil {
			http.Error(w, "streaming not supported", http.StatusInternalServerError)
			return
		}

		first := true
		_, err = renderer.Render(r.Context(), Request{Path: r.URL.Path, Query: r.URL.Query()}, func(f Frame) error {
			if first {
				first = false
				if f.Status == StatusNotFound {
					w.WriteHeader(http.StatusNotFound)
				}
			}
			return s.WriteFrame(f)
		})
		if err != nil {
			logger.Warn("document render aborted", zap.String("path", r.URL.Path), zap.Error(err))
		}
	}
}
