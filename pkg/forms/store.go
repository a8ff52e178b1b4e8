package forms

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	formTypes "github.com/finnscodingadventure/digilizeforms/pkg/forms/types"
	"github.com/finnscodingadventure/digilizeforms/pkg/sheets"
)

const DEFAULT_FETCH_TIMEOUT = 15 * time.Second

type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
	StateError
)

// Store is the in-memory cache of the current identity's forms plus the
// mutation operations that reconcile it against the gateway. The cache is
// keyed implicitly by the current identity and invalidated wholesale on
// identity change.
type Store struct {
	gateway      Gateway
	sink         sheets.Sink
	fetchTimeout time.Duration

	mu       sync.Mutex
	identity string
	forms    []formTypes.FormDocument
	state    State
	lastErr  error
	fetchSeq uint64
}

// NewStore wires the store to its gateway. The sink may be nil; forwarding
// is then skipped. A non-positive fetchTimeout falls back to the default.
func NewStore(gateway Gateway, sink sheets.Sink, fetchTimeout time.Duration) *Store {
	if fetchTimeout <= 0 {
		fetchTimeout = DEFAULT_FETCH_TIMEOUT
	}
	return &Store{
		gateway:      gateway,
		sink:         sink,
		fetchTimeout: fetchTimeout,
	}
}

// SetIdentity replaces the current identity and invalidates the cache
// wholesale. An empty identity (logout) settles the store to ready with an
// empty cache, bypassing loading.
func (s *Store) SetIdentity(ownerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.identity = ownerID
	s.forms = []formTypes.FormDocument{}
	s.lastErr = nil
	if ownerID == "" {
		s.state = StateReady
	} else {
		s.state = StateUninitialized
	}
}

func (s *Store) Identity() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Forms returns the current cached summaries, most recent update first.
func (s *Store) Forms() []formTypes.FormSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	summaries := make([]formTypes.FormSummary, len(s.forms))
	for i := range s.forms {
		summaries[i] = s.forms[i].Summary()
	}
	return summaries
}

// FetchAll replaces the cache wholesale with the gateway's current view.
// On timeout or failure the cache is emptied and the error recorded, so
// that stale entries are never mistaken for a complete listing. When
// several calls overlap, the last started call wins.
func (s *Store) FetchAll(ctx context.Context) error {
	s.mu.Lock()
	if s.identity == "" {
		s.mu.Unlock()
		return formTypes.ErrNoIdentity
	}
	owner := s.identity
	s.fetchSeq++
	seq := s.fetchSeq
	s.state = StateLoading
	s.mu.Unlock()

	fctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	forms, err := s.gateway.GetFormsByOwner(fctx, owner)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.fetchSeq || owner != s.identity {
		// a newer fetch or an identity change superseded this result
		return nil
	}

	if err != nil {
		s.forms = []formTypes.FormDocument{}
		s.state = StateError
		s.lastErr = err
		return err
	}

	s.forms = forms
	s.state = StateReady
	s.lastErr = nil
	return nil
}

// GetOne is a read-through lookup: a cached entry with full structure is
// returned without a network call; otherwise the form is fetched and
// upserted into the cache. A missing row yields (nil, nil).
func (s *Store) GetOne(ctx context.Context, formID string) (*formTypes.FormDocument, error) {
	s.mu.Lock()
	if s.identity == "" {
		s.mu.Unlock()
		return nil, formTypes.ErrNoIdentity
	}
	owner := s.identity
	for i := range s.forms {
		if s.forms[i].ID.Hex() == formID && s.forms[i].HasStructure() {
			doc := s.forms[i]
			s.mu.Unlock()
			return &doc, nil
		}
	}
	s.mu.Unlock()

	doc, err := s.gateway.GetFormByID(ctx, formID, owner)
	if err != nil {
		if errors.Is(err, formTypes.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	s.upsert(owner, doc)
	result := *doc
	return &result, nil
}

// upsert replaces the cache entry with the same id in place, or appends
// when absent. No-op if the identity changed meanwhile.
func (s *Store) upsert(owner string, doc *formTypes.FormDocument) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if owner != s.identity {
		return
	}
	for i := range s.forms {
		if s.forms[i].ID == doc.ID {
			s.forms[i] = *doc
			return
		}
	}
	s.forms = append(s.forms, *doc)
}

type CreateFormData struct {
	Title       string
	Description string
	Structure   *formTypes.FormStructure
	IsPublished bool
}

// Create inserts a new form owned by the current identity and prepends it
// to the cache. Failures propagate to the caller.
func (s *Store) Create(ctx context.Context, data CreateFormData) (string, error) {
	s.mu.Lock()
	owner := s.identity
	s.mu.Unlock()
	if owner == "" {
		return "", formTypes.ErrNoIdentity
	}

	title := strings.TrimSpace(data.Title)
	if title == "" {
		title = formTypes.DEFAULT_FORM_TITLE
	}

	structure := data.Structure
	if structure == nil {
		structure = &formTypes.FormStructure{Blocks: []formTypes.Block{}}
	}
	if err := formTypes.ValidateBlocks(structure.Blocks); err != nil {
		return "", err
	}

	form := &formTypes.FormDocument{
		OwnerID:     owner,
		Title:       title,
		Description: data.Description,
		Structure:   structure,
		IsPublished: data.IsPublished,
	}

	created, err := s.gateway.CreateForm(ctx, form)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	if owner == s.identity {
		s.forms = append([]formTypes.FormDocument{*created}, s.forms...)
	}
	s.mu.Unlock()

	return created.ID.Hex(), nil
}

// Update applies a sparse patch filtered by id and the current identity.
// The cache entry is replaced in place, preserving list position. Zero
// matched rows surface as ErrNotFound.
func (s *Store) Update(ctx context.Context, formID string, patch formTypes.FormPatch) (*formTypes.FormDocument, error) {
	s.mu.Lock()
	owner := s.identity
	s.mu.Unlock()
	if owner == "" {
		return nil, formTypes.ErrNoIdentity
	}

	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, errors.New("form title cannot be empty")
	}
	if patch.Structure != nil {
		if err := formTypes.ValidateBlocks(patch.Structure.Blocks); err != nil {
			return nil, err
		}
	}

	updated, err := s.gateway.UpdateForm(ctx, formID, owner, patch)
	if err != nil {
		return nil, err
	}

	s.upsert(owner, updated)
	result := *updated
	return &result, nil
}

// Delete removes the form. It reports success as a boolean so that callers
// can show a soft warning instead of an exception; the cache entry is only
// removed on confirmed success.
func (s *Store) Delete(ctx context.Context, formID string) bool {
	s.mu.Lock()
	owner := s.identity
	s.mu.Unlock()
	if owner == "" {
		return false
	}

	if err := s.gateway.DeleteForm(ctx, formID, owner); err != nil {
		slog.Warn("failed to delete form", slog.String("formID", formID), slog.String("error", err.Error()))
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if owner != s.identity {
		return true
	}
	for i := range s.forms {
		if s.forms[i].ID.Hex() == formID {
			s.forms = append(s.forms[:i], s.forms[i+1:]...)
			break
		}
	}
	return true
}

func (s *Store) Publish(ctx context.Context, formID string) (*formTypes.FormDocument, error) {
	published := true
	return s.Update(ctx, formID, formTypes.FormPatch{IsPublished: &published})
}

func (s *Store) Unpublish(ctx context.Context, formID string) (*formTypes.FormDocument, error) {
	published := false
	return s.Update(ctx, formID, formTypes.FormPatch{IsPublished: &published})
}

// ResponseCounts returns a dense map of response counts per form id.
// Malformed rows are skipped; on failure the map is empty and the error is
// recorded instead of propagated, since counts are an enhancement and the
// form list must stay renderable without them.
func (s *Store) ResponseCounts(ctx context.Context) map[string]int64 {
	counts := map[string]int64{}

	s.mu.Lock()
	owner := s.identity
	s.mu.Unlock()
	if owner == "" {
		return counts
	}

	rows, err := s.gateway.GetResponseCountsByOwner(ctx, owner)
	if err != nil {
		slog.Warn("failed to fetch response counts", slog.String("error", err.Error()))
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
		return counts
	}

	for _, row := range rows {
		if row.FormID == "" || row.Count < 0 {
			continue
		}
		counts[row.FormID] = row.Count
	}
	return counts
}

// GetFormWithResponses composes the owner's form with its responses,
// newest first. It fails if either leg fails.
func (s *Store) GetFormWithResponses(ctx context.Context, formID string) (*formTypes.FormWithResponses, error) {
	s.mu.Lock()
	owner := s.identity
	s.mu.Unlock()
	if owner == "" {
		return nil, formTypes.ErrNoIdentity
	}

	form, err := s.gateway.GetFormByID(ctx, formID, owner)
	if err != nil {
		return nil, err
	}

	responses, err := s.gateway.GetResponsesForForm(ctx, formID)
	if err != nil {
		return nil, err
	}

	return &formTypes.FormWithResponses{
		Form:      form,
		Responses: responses,
	}, nil
}

// GetPublicForm is the sole identity-independent read path. It only ever
// returns published forms and never attaches response data. A missing or
// unpublished form yields (nil, nil).
func (s *Store) GetPublicForm(ctx context.Context, formID string) (*formTypes.FormDocument, error) {
	form, err := s.gateway.GetPublishedFormByID(ctx, formID)
	if err != nil {
		if errors.Is(err, formTypes.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return form, nil
}

// SaveResponse stores an anonymous submission and then forwards it to the
// spreadsheet sink. Forwarding is best-effort: a sink failure is logged and
// never changes the result of the submission.
func (s *Store) SaveResponse(ctx context.Context, formID string, answers map[string]formTypes.AnswerValue, metadata map[string]string) (*formTypes.FormResponse, error) {
	if formID == "" {
		return nil, formTypes.ErrNotFound
	}
	if answers == nil {
		answers = map[string]formTypes.AnswerValue{}
	}
	if metadata == nil {
		metadata = map[string]string{}
	}

	response := &formTypes.FormResponse{
		FormID:   formID,
		Answers:  answers,
		Metadata: metadata,
	}

	stored, err := s.gateway.SaveResponse(ctx, response)
	if err != nil {
		return nil, err
	}

	if s.sink != nil {
		if err := s.sink.Forward(ctx, formID, stored); err != nil {
			slog.Error("failed to forward response to spreadsheet sink", slog.String("formID", formID), slog.String("error", err.Error()))
		}
	}

	return stored, nil
}
