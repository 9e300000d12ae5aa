package endpoints

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/studydeck/studydeck/internal/api"
	"github.com/studydeck/studydeck/internal/quota"
	"github.com/studydeck/studydeck/internal/svcctx"
)

// QuotaEndpoint handles GET /api/quota. It reports the caller's current
// usage without consuming budget.
type QuotaEndpoint struct{}

var _ api.Endpoint = (*QuotaEndpoint)(nil)

func (e *QuotaEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/quota", e.handler
}

func (e *QuotaEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary		Get quota status
//	@Description	Report the caller's generation budget for the current window
//	@Tags			quota
//	@Produce		json
//	@Success		200	{object}	quota.Status
//	@Failure		500	{object}	ErrorResponse
//	@Router			/api/quota [get]
func (e *QuotaEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	store := svcctx.QuotaStoreFrom(r.Context())
	if store == nil {
		writeError(w, http.StatusServiceUnavailable, "quota store not initialized")
		return
	}

	status, err := store.Check(r.Context(), quota.UserID(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, status)
}

func (e *QuotaEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "quota",
		Short: "Show remaining generation quota",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var status quota.Status
			if err := client.Get(cmd.Context(), "/api/quota", &status); err != nil {
				return err
			}
			return api.Output(status)
		},
	}
}
