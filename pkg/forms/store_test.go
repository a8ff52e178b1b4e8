package forms

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	formTypes "github.com/finnscodingadventure/digilizeforms/pkg/forms/types"
)

type fakeGateway struct {
	mu        sync.Mutex
	forms     map[string]formTypes.FormDocument
	responses []formTypes.FormResponse

	listCalls   int
	getCalls    int
	failWith    error
	blockUntil  chan struct{}
	failDeletes bool
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{forms: map[string]formTypes.FormDocument{}}
}

func (g *fakeGateway) addForm(ownerID string, title string, published bool, updatedAt time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	doc := formTypes.FormDocument{
		ID:          primitive.NewObjectID(),
		OwnerID:     ownerID,
		Title:       title,
		IsPublished: published,
		Structure:   &formTypes.FormStructure{Blocks: []formTypes.Block{}},
		UpdatedAt:   updatedAt,
	}
	g.forms[doc.ID.Hex()] = doc
	return doc.ID.Hex()
}

func (g *fakeGateway) wait(ctx context.Context) error {
	if g.blockUntil == nil {
		return nil
	}
	select {
	case <-g.blockUntil:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *fakeGateway) GetFormsByOwner(ctx context.Context, ownerID string) ([]formTypes.FormDocument, error) {
	if err := g.wait(ctx); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listCalls++
	if g.failWith != nil {
		return nil, g.failWith
	}
	forms := []formTypes.FormDocument{}
	for _, doc := range g.forms {
		if doc.OwnerID == ownerID {
			doc.Structure = nil
			forms = append(forms, doc)
		}
	}
	sort.Slice(forms, func(i, j int) bool {
		return forms[i].UpdatedAt.After(forms[j].UpdatedAt)
	})
	return forms, nil
}

func (g *fakeGateway) GetFormByID(ctx context.Context, formID string, ownerID string) (*formTypes.FormDocument, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.getCalls++
	if g.failWith != nil {
		return nil, g.failWith
	}
	doc, ok := g.forms[formID]
	if !ok || doc.OwnerID != ownerID {
		return nil, formTypes.ErrNotFound
	}
	return &doc, nil
}

func (g *fakeGateway) GetPublishedFormByID(ctx context.Context, formID string) (*formTypes.FormDocument, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	doc, ok := g.forms[formID]
	if !ok || !doc.IsPublished {
		return nil, formTypes.ErrNotFound
	}
	return &doc, nil
}

func (g *fakeGateway) CreateForm(ctx context.Context, form *formTypes.FormDocument) (*formTypes.FormDocument, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if form.OwnerID == "" {
		return nil, formTypes.ErrNoIdentity
	}
	doc := *form
	doc.ID = primitive.NewObjectID()
	doc.CreatedAt = time.Now()
	doc.UpdatedAt = doc.CreatedAt
	g.forms[doc.ID.Hex()] = doc
	return &doc, nil
}

func (g *fakeGateway) UpdateForm(ctx context.Context, formID string, ownerID string, patch formTypes.FormPatch) (*formTypes.FormDocument, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	doc, ok := g.forms[formID]
	if !ok || doc.OwnerID != ownerID {
		return nil, formTypes.ErrNotFound
	}
	if patch.Title != nil {
		doc.Title = *patch.Title
	}
	if patch.Description != nil {
		doc.Description = *patch.Description
	}
	if patch.Structure != nil {
		doc.Structure = patch.Structure
	}
	if patch.IsPublished != nil {
		doc.IsPublished = *patch.IsPublished
	}
	doc.UpdatedAt = time.Now()
	g.forms[formID] = doc
	return &doc, nil
}

func (g *fakeGateway) DeleteForm(ctx context.Context, formID string, ownerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failDeletes {
		return errors.New("delete rejected")
	}
	doc, ok := g.forms[formID]
	if !ok || doc.OwnerID != ownerID {
		return formTypes.ErrNotFound
	}
	delete(g.forms, formID)
	return nil
}

func (g *fakeGateway) SaveResponse(ctx context.Context, response *formTypes.FormResponse) (*formTypes.FormResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	stored := *response
	stored.ID = primitive.NewObjectID()
	stored.CreatedAt = time.Now()
	g.responses = append(g.responses, stored)
	return &stored, nil
}

func (g *fakeGateway) GetResponsesForForm(ctx context.Context, formID string) ([]formTypes.FormResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	responses := []formTypes.FormResponse{}
	for _, r := range g.responses {
		if r.FormID == formID {
			responses = append(responses, r)
		}
	}
	return responses, nil
}

func (g *fakeGateway) GetResponseCountsByOwner(ctx context.Context, ownerID string) ([]formTypes.FormResponseCount, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failWith != nil {
		return nil, g.failWith
	}
	counts := map[string]int64{}
	for _, r := range g.responses {
		if doc, ok := g.forms[r.FormID]; ok && doc.OwnerID == ownerID {
			counts[r.FormID]++
		}
	}
	rows := []formTypes.FormResponseCount{}
	for id, count := range counts {
		rows = append(rows, formTypes.FormResponseCount{FormID: id, Count: count})
	}
	return rows, nil
}

type fakeSink struct {
	mu      sync.Mutex
	calls   int
	failing bool
}

func (s *fakeSink) Forward(ctx context.Context, formID string, response *formTypes.FormResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.failing {
		return errors.New("sink unreachable")
	}
	return nil
}

func TestStoreSetIdentity(t *testing.T) {
	gateway := newFakeGateway()
	store := NewStore(gateway, nil, 0)

	t.Run("with no identity", func(t *testing.T) {
		if err := store.FetchAll(context.Background()); err != formTypes.ErrNoIdentity {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("logout settles to ready with empty cache", func(t *testing.T) {
		store.SetIdentity("")
		if store.State() != StateReady {
			t.Errorf("unexpected state: %d", store.State())
		}
		if len(store.Forms()) != 0 {
			t.Errorf("unexpected number of forms: %d", len(store.Forms()))
		}
	})

	t.Run("identity change invalidates cache", func(t *testing.T) {
		gateway.addForm("user-1", "F1", false, time.Now())
		store.SetIdentity("user-1")
		if err := store.FetchAll(context.Background()); err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}
		if len(store.Forms()) != 1 {
			t.Errorf("unexpected number of forms: %d", len(store.Forms()))
			return
		}

		store.SetIdentity("user-2")
		if len(store.Forms()) != 0 {
			t.Errorf("cache should be empty after identity change, got %d forms", len(store.Forms()))
		}
		if store.State() != StateUninitialized {
			t.Errorf("unexpected state: %d", store.State())
		}
	})
}

func TestStoreFetchAll(t *testing.T) {
	t.Run("orders forms by most recent update", func(t *testing.T) {
		gateway := newFakeGateway()
		gateway.addForm("user-1", "older", false, time.Now().Add(-time.Hour))
		gateway.addForm("user-1", "newer", false, time.Now())
		gateway.addForm("user-2", "foreign", false, time.Now())

		store := NewStore(gateway, nil, 0)
		store.SetIdentity("user-1")
		if err := store.FetchAll(context.Background()); err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}

		forms := store.Forms()
		if len(forms) != 2 {
			t.Errorf("unexpected number of forms: %d", len(forms))
			return
		}
		if forms[0].Title != "newer" || forms[1].Title != "older" {
			t.Errorf("unexpected order: %s, %s", forms[0].Title, forms[1].Title)
		}
	})

	t.Run("failure empties cache and records error", func(t *testing.T) {
		gateway := newFakeGateway()
		gateway.addForm("user-1", "F1", false, time.Now())

		store := NewStore(gateway, nil, 0)
		store.SetIdentity("user-1")
		if err := store.FetchAll(context.Background()); err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}

		gateway.failWith = errors.New("backend down")
		if err := store.FetchAll(context.Background()); err == nil {
			t.Error("should return error")
			return
		}
		if store.State() != StateError {
			t.Errorf("unexpected state: %d", store.State())
		}
		if len(store.Forms()) != 0 {
			t.Errorf("stale forms should be dropped, got %d", len(store.Forms()))
		}
		if store.Err() == nil {
			t.Error("error should be recorded")
		}
	})

	t.Run("settles within the fetch timeout", func(t *testing.T) {
		gateway := newFakeGateway()
		gateway.blockUntil = make(chan struct{})
		defer close(gateway.blockUntil)

		store := NewStore(gateway, nil, 50*time.Millisecond)
		store.SetIdentity("user-1")

		start := time.Now()
		err := store.FetchAll(context.Background())
		if err == nil {
			t.Error("should return error")
			return
		}
		if time.Since(start) > 2*time.Second {
			t.Error("fetch should have been bounded by the timeout")
		}
		if store.State() != StateError {
			t.Errorf("unexpected state: %d", store.State())
		}
		if len(store.Forms()) != 0 {
			t.Errorf("unexpected number of forms: %d", len(store.Forms()))
		}
	})
}

func TestStoreGetOne(t *testing.T) {
	gateway := newFakeGateway()
	formID := gateway.addForm("user-1", "F1", false, time.Now())

	store := NewStore(gateway, nil, 0)
	store.SetIdentity("user-1")

	t.Run("fetches and caches on first access", func(t *testing.T) {
		form, err := store.GetOne(context.Background(), formID)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}
		if form == nil || !form.HasStructure() {
			t.Error("form should be returned with structure")
			return
		}
		if gateway.getCalls != 1 {
			t.Errorf("unexpected number of gateway calls: %d", gateway.getCalls)
		}
	})

	t.Run("second access is served from the cache", func(t *testing.T) {
		form, err := store.GetOne(context.Background(), formID)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}
		if form == nil {
			t.Error("form should be returned")
			return
		}
		if gateway.getCalls != 1 {
			t.Errorf("unexpected number of gateway calls: %d", gateway.getCalls)
		}
	})

	t.Run("with unknown id", func(t *testing.T) {
		form, err := store.GetOne(context.Background(), primitive.NewObjectID().Hex())
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if form != nil {
			t.Error("form should be nil")
		}
	})

	t.Run("with other owner's form", func(t *testing.T) {
		foreignID := gateway.addForm("user-2", "foreign", false, time.Now())
		form, err := store.GetOne(context.Background(), foreignID)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if form != nil {
			t.Error("form of another owner should not be visible")
		}
	})
}

func TestStoreCreate(t *testing.T) {
	gateway := newFakeGateway()
	store := NewStore(gateway, nil, 0)
	store.SetIdentity("user-1")

	t.Run("defaults empty title", func(t *testing.T) {
		id, err := store.Create(context.Background(), CreateFormData{Title: "   "})
		if err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}
		form, err := store.GetOne(context.Background(), id)
		if err != nil || form == nil {
			t.Errorf("unexpected result: %v, %v", form, err)
			return
		}
		if form.Title != formTypes.DEFAULT_FORM_TITLE {
			t.Errorf("unexpected title: %s", form.Title)
		}
	})

	t.Run("prepends new form to the listing", func(t *testing.T) {
		id, err := store.Create(context.Background(), CreateFormData{Title: "Survey"})
		if err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}
		forms := store.Forms()
		if len(forms) < 1 || forms[0].ID != id {
			t.Error("new form should be first in the listing")
		}
		if forms[0].Title != "Survey" {
			t.Errorf("unexpected title: %s", forms[0].Title)
		}
	})

	t.Run("rejects misplaced welcome screen", func(t *testing.T) {
		structure := &formTypes.FormStructure{Blocks: []formTypes.Block{
			{ID: "b1", Name: formTypes.BLOCK_KIND_SHORT_TEXT},
			{ID: "b2", Name: formTypes.BLOCK_KIND_WELCOME_SCREEN},
		}}
		if _, err := store.Create(context.Background(), CreateFormData{Title: "bad", Structure: structure}); err != formTypes.ErrWelcomeScreenPosition {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("ordering survives a refetch", func(t *testing.T) {
		if err := store.FetchAll(context.Background()); err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}
		forms := store.Forms()
		for i := 1; i < len(forms); i++ {
			if forms[i-1].UpdatedAt.Before(forms[i].UpdatedAt) {
				t.Error("forms should be ordered by most recent update")
			}
		}
	})
}

func TestStoreUpdate(t *testing.T) {
	gateway := newFakeGateway()
	formID := gateway.addForm("user-1", "F1", false, time.Now())

	store := NewStore(gateway, nil, 0)
	store.SetIdentity("user-1")
	if err := store.FetchAll(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
		return
	}

	t.Run("with empty title", func(t *testing.T) {
		title := "  "
		if _, err := store.Update(context.Background(), formID, formTypes.FormPatch{Title: &title}); err == nil {
			t.Error("should return error")
		}
	})

	t.Run("updates cache entry in place", func(t *testing.T) {
		title := "renamed"
		updated, err := store.Update(context.Background(), formID, formTypes.FormPatch{Title: &title})
		if err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}
		if updated.Title != "renamed" {
			t.Errorf("unexpected title: %s", updated.Title)
		}
		forms := store.Forms()
		if len(forms) != 1 || forms[0].Title != "renamed" {
			t.Error("cache entry should reflect the update")
		}
	})

	t.Run("with unknown id", func(t *testing.T) {
		title := "T"
		if _, err := store.Update(context.Background(), primitive.NewObjectID().Hex(), formTypes.FormPatch{Title: &title}); !errors.Is(err, formTypes.ErrNotFound) {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("publish toggle reflected without refetch", func(t *testing.T) {
		if _, err := store.Publish(context.Background(), formID); err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}
		if !store.Forms()[0].IsPublished {
			t.Error("form should be published in the cache")
		}

		if _, err := store.Unpublish(context.Background(), formID); err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}
		if store.Forms()[0].IsPublished {
			t.Error("form should be unpublished in the cache")
		}
	})
}

func TestStoreDelete(t *testing.T) {
	gateway := newFakeGateway()
	formID := gateway.addForm("user-1", "F1", false, time.Now())

	store := NewStore(gateway, nil, 0)
	store.SetIdentity("user-1")
	if err := store.FetchAll(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
		return
	}

	t.Run("failed delete keeps cache intact", func(t *testing.T) {
		gateway.failDeletes = true
		if store.Delete(context.Background(), formID) {
			t.Error("delete should report failure")
		}
		if len(store.Forms()) != 1 {
			t.Error("cache should be unchanged after failed delete")
		}
		gateway.failDeletes = false
	})

	t.Run("wrong owner affects nothing", func(t *testing.T) {
		store.SetIdentity("user-2")
		if store.Delete(context.Background(), formID) {
			t.Error("delete should report failure for foreign form")
		}
		gateway.mu.Lock()
		_, stillThere := gateway.forms[formID]
		gateway.mu.Unlock()
		if !stillThere {
			t.Error("foreign form should not have been deleted")
		}
		store.SetIdentity("user-1")
		if err := store.FetchAll(context.Background()); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("successful delete removes cache entry", func(t *testing.T) {
		if !store.Delete(context.Background(), formID) {
			t.Error("delete should succeed")
			return
		}
		if len(store.Forms()) != 0 {
			t.Errorf("unexpected number of forms: %d", len(store.Forms()))
		}
	})
}

func TestStoreResponseCounts(t *testing.T) {
	gateway := newFakeGateway()
	formID := gateway.addForm("user-1", "F1", true, time.Now())
	gateway.addForm("user-1", "F2", false, time.Now())

	store := NewStore(gateway, nil, 0)
	store.SetIdentity("user-1")

	t.Run("on gateway failure returns empty map", func(t *testing.T) {
		gateway.failWith = errors.New("backend down")
		counts := store.ResponseCounts(context.Background())
		if len(counts) != 0 {
			t.Errorf("unexpected counts: %v", counts)
		}
		if store.Err() == nil {
			t.Error("error should be recorded")
		}
		gateway.failWith = nil
	})

	t.Run("counts responses per form", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			if _, err := store.SaveResponse(context.Background(), formID, nil, nil); err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
		}
		counts := store.ResponseCounts(context.Background())
		if counts[formID] != 3 {
			t.Errorf("unexpected count: %d", counts[formID])
		}
	})
}

func TestStorePublicPaths(t *testing.T) {
	gateway := newFakeGateway()
	publishedID := gateway.addForm("user-1", "published", true, time.Now())
	draftID := gateway.addForm("user-1", "draft", false, time.Now())

	store := NewStore(gateway, nil, 0)

	t.Run("published form is visible without identity", func(t *testing.T) {
		form, err := store.GetPublicForm(context.Background(), publishedID)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}
		if form == nil || form.Title != "published" {
			t.Error("published form should be returned")
		}
	})

	t.Run("unpublished form yields nil", func(t *testing.T) {
		form, err := store.GetPublicForm(context.Background(), draftID)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if form != nil {
			t.Error("draft form should not be publicly visible")
		}
	})
}

func TestStoreSaveResponse(t *testing.T) {
	t.Run("with empty form id", func(t *testing.T) {
		store := NewStore(newFakeGateway(), nil, 0)
		if _, err := store.SaveResponse(context.Background(), "", nil, nil); !errors.Is(err, formTypes.ErrNotFound) {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("forwards stored response to the sink", func(t *testing.T) {
		gateway := newFakeGateway()
		formID := gateway.addForm("user-1", "F1", true, time.Now())
		sink := &fakeSink{}
		store := NewStore(gateway, sink, 0)

		answers := map[string]formTypes.AnswerValue{"b1": {Value: "hello"}}
		stored, err := store.SaveResponse(context.Background(), formID, answers, nil)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}
		if stored.ID.IsZero() {
			t.Error("stored response should have an id")
		}
		if sink.calls != 1 {
			t.Errorf("unexpected number of sink calls: %d", sink.calls)
		}
	})

	t.Run("sink failure does not change the result", func(t *testing.T) {
		gateway := newFakeGateway()
		formID := gateway.addForm("user-1", "F1", true, time.Now())
		sink := &fakeSink{failing: true}
		store := NewStore(gateway, sink, 0)

		stored, err := store.SaveResponse(context.Background(), formID, nil, nil)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}
		if stored == nil {
			t.Error("response should be stored despite the failing sink")
		}
		if len(gateway.responses) != 1 {
			t.Errorf("unexpected number of stored responses: %d", len(gateway.responses))
		}
	})
}

func TestStoreGetFormWithResponses(t *testing.T) {
	gateway := newFakeGateway()
	formID := gateway.addForm("user-1", "F1", true, time.Now())

	store := NewStore(gateway, nil, 0)
	store.SetIdentity("user-1")

	if _, err := store.SaveResponse(context.Background(), formID, map[string]formTypes.AnswerValue{"b1": {Value: "a"}}, nil); err != nil {
		t.Errorf("unexpected error: %v", err)
		return
	}

	t.Run("composes form and responses", func(t *testing.T) {
		result, err := store.GetFormWithResponses(context.Background(), formID)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}
		if result.Form == nil || result.Form.Title != "F1" {
			t.Error("form should be included")
		}
		if len(result.Responses) != 1 {
			t.Errorf("unexpected number of responses: %d", len(result.Responses))
		}
	})

	t.Run("with unknown id", func(t *testing.T) {
		if _, err := store.GetFormWithResponses(context.Background(), primitive.NewObjectID().Hex()); !errors.Is(err, formTypes.ErrNotFound) {
			t.Errorf("unexpected error: %v", err)
		}
	})
}
