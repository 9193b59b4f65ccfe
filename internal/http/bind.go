package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
)

// bindQuery binds an optional form style query parameter into dest. Pointer
// destinations stay nil when the parameter is absent.
func bindQuery(r *http.Request, name string, dest any) error {
	return runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), dest)
}

func bindPathID(r *http.Request) (uuid.UUID, error) {
	var id uuid.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{
			ParamLocation: runtime.ParamLocationPath,
			Explode:       false,
			Required:      true,
		})
	return id, err
}

// bindPage binds the shared limit and offset parameters.
func bindPage(r *http.Request, limit, offset *uint64) error {
	if err := bindQuery(r, "limit", limit); err != nil {
		return err
	}
	return bindQuery(r, "offset", offset)
}
