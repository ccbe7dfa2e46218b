package api

import (
	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/larderapp/larder-server/internal/errors"
	"github.com/larderapp/larder-server/internal/http/response"
)

// EnvelopeTransformer wraps every huma response body in the versioned
// envelope. Errors become {success: false, error, code, message, details}.
func EnvelopeTransformer(_ huma.Context, _ string, v any) (any, error) {
	switch body := v.(type) {
	case response.Envelope, *response.Envelope:
		return v, nil
	case *APIError:
		return response.Fail(body.Code, body.Message, body.Details), nil
	case *domainerrors.Error:
		return response.Fail(string(body.Code), body.Message, body.Details), nil
	case huma.StatusError:
		return response.Fail(response.CodeForStatus(body.GetStatus()), body.Error(), nil), nil
	default:
		return response.OK(v), nil
	}
}
