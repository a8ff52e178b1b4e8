package forms

import (
	"context"

	formTypes "github.com/finnscodingadventure/digilizeforms/pkg/forms/types"
)

// Gateway is the stateless call relay towards the hosted backend. It
// performs no retries and no caching; errors are surfaced verbatim.
// Implementations must never accept a write without an owner filter.
type Gateway interface {
	GetFormsByOwner(ctx context.Context, ownerID string) ([]formTypes.FormDocument, error)
	GetFormByID(ctx context.Context, formID string, ownerID string) (*formTypes.FormDocument, error)
	GetPublishedFormByID(ctx context.Context, formID string) (*formTypes.FormDocument, error)
	CreateForm(ctx context.Context, form *formTypes.FormDocument) (*formTypes.FormDocument, error)
	UpdateForm(ctx context.Context, formID string, ownerID string, patch formTypes.FormPatch) (*formTypes.FormDocument, error)
	DeleteForm(ctx context.Context, formID string, ownerID string) error
	SaveResponse(ctx context.Context, response *formTypes.FormResponse) (*formTypes.FormResponse, error)
	GetResponsesForForm(ctx context.Context, formID string) ([]formTypes.FormResponse, error)
	GetResponseCountsByOwner(ctx context.Context, ownerID string) ([]formTypes.FormResponseCount, error)
}
