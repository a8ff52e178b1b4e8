package builder

import (
	"errors"
	"strings"

	formTypes "github.com/finnscodingadventure/digilizeforms/pkg/forms/types"
)

var (
	ErrBlockNotFound     = errors.New("block not found")
	ErrNotAGroup         = errors.New("block is not a group")
	ErrWelcomeScreenOnly = errors.New("the leading welcome-screen block cannot be removed")
	ErrDuplicateWelcome  = errors.New("a welcome-screen block already exists")
	ErrInvalidMove       = errors.New("invalid block move")
	ErrEmptyTitle        = errors.New("form title cannot be empty")
)

// Draft is the transient, non-persisted editing state of one form. All
// mutations are synchronous and local; nothing reaches the backend until
// the draft is saved through the form collection store.
type Draft struct {
	Title       string
	Description string
	Published   bool
	Blocks      []formTypes.Block
	Theme       formTypes.Theme
	Settings    formTypes.FormSettings
}

// NewDraft starts a fresh draft containing the default welcome screen.
func NewDraft() *Draft {
	return &Draft{
		Blocks:   []formTypes.Block{newBlock(formTypes.BLOCK_KIND_WELCOME_SCREEN)},
		Theme:    DefaultTheme(),
		Settings: DefaultSettings(),
	}
}

// DraftFromForm initializes a draft from a loaded form document.
func DraftFromForm(form *formTypes.FormDocument) *Draft {
	draft := NewDraft()
	if form == nil {
		return draft
	}
	draft.Title = form.Title
	draft.Description = form.Description
	draft.Published = form.IsPublished
	if form.Structure != nil {
		draft.Blocks = append([]formTypes.Block{}, form.Structure.Blocks...)
		draft.Theme = form.Structure.Theme
		draft.Settings = form.Structure.Settings
	}
	return draft
}

func (d *Draft) hasWelcomeScreen() bool {
	return len(d.Blocks) > 0 && d.Blocks[0].Name == formTypes.BLOCK_KIND_WELCOME_SCREEN
}

func (d *Draft) findBlock(blockID string) int {
	for i := range d.Blocks {
		if d.Blocks[i].ID == blockID {
			return i
		}
	}
	return -1
}

// AddBlock appends a new block of the given kind with its default
// attributes. A welcome screen is inserted at position 0 instead; adding a
// second one is rejected.
func (d *Draft) AddBlock(kind string) (*formTypes.Block, error) {
	if !formTypes.IsValidBlockKind(kind) {
		return nil, errors.New("unknown block kind: " + kind)
	}

	block := newBlock(kind)
	if kind == formTypes.BLOCK_KIND_WELCOME_SCREEN {
		if d.hasWelcomeScreen() {
			return nil, ErrDuplicateWelcome
		}
		d.Blocks = append([]formTypes.Block{block}, d.Blocks...)
		return &d.Blocks[0], nil
	}

	d.Blocks = append(d.Blocks, block)
	return &d.Blocks[len(d.Blocks)-1], nil
}

// RemoveBlock deletes a block. The leading welcome screen cannot be
// removed while it is the only block of its kind.
func (d *Draft) RemoveBlock(blockID string) error {
	idx := d.findBlock(blockID)
	if idx < 0 {
		return ErrBlockNotFound
	}
	if idx == 0 && d.hasWelcomeScreen() {
		return ErrWelcomeScreenOnly
	}
	d.Blocks = append(d.Blocks[:idx], d.Blocks[idx+1:]...)
	return nil
}

// MoveBlock reorders the block list. The welcome screen is pinned to
// position 0: it cannot be moved away, and no other block may take its
// place while it exists.
func (d *Draft) MoveBlock(from int, to int) error {
	if from < 0 || from >= len(d.Blocks) || to < 0 || to >= len(d.Blocks) {
		return ErrInvalidMove
	}
	if from == to {
		return nil
	}
	if d.hasWelcomeScreen() && (from == 0 || to == 0) {
		return ErrInvalidMove
	}

	block := d.Blocks[from]
	d.Blocks = append(d.Blocks[:from], d.Blocks[from+1:]...)
	rest := append([]formTypes.Block{}, d.Blocks[to:]...)
	d.Blocks = append(append(d.Blocks[:to:to], block), rest...)
	return nil
}

// UpdateBlockAttributes replaces a block's attributes in place.
func (d *Draft) UpdateBlockAttributes(blockID string, attributes formTypes.BlockAttributes) error {
	idx := d.findBlock(blockID)
	if idx < 0 {
		return ErrBlockNotFound
	}
	d.Blocks[idx].Attributes = attributes
	return nil
}

func (d *Draft) findGroup(groupID string) (int, error) {
	idx := d.findBlock(groupID)
	if idx < 0 {
		return -1, ErrBlockNotFound
	}
	if d.Blocks[idx].Name != formTypes.BLOCK_KIND_GROUP {
		return -1, ErrNotAGroup
	}
	return idx, nil
}

// AddInnerBlock appends a new block inside a group. Groups cannot contain
// other groups or welcome screens.
func (d *Draft) AddInnerBlock(groupID string, kind string) (*formTypes.Block, error) {
	idx, err := d.findGroup(groupID)
	if err != nil {
		return nil, err
	}
	if kind == formTypes.BLOCK_KIND_GROUP {
		return nil, formTypes.ErrNestedGroup
	}
	if kind == formTypes.BLOCK_KIND_WELCOME_SCREEN || !formTypes.IsValidBlockKind(kind) {
		return nil, errors.New("invalid inner block kind: " + kind)
	}

	group := &d.Blocks[idx]
	group.InnerBlocks = append(group.InnerBlocks, newBlock(kind))
	return &group.InnerBlocks[len(group.InnerBlocks)-1], nil
}

func (d *Draft) RemoveInnerBlock(groupID string, blockID string) error {
	idx, err := d.findGroup(groupID)
	if err != nil {
		return err
	}

	group := &d.Blocks[idx]
	for i := range group.InnerBlocks {
		if group.InnerBlocks[i].ID == blockID {
			group.InnerBlocks = append(group.InnerBlocks[:i], group.InnerBlocks[i+1:]...)
			return nil
		}
	}
	return ErrBlockNotFound
}

func (d *Draft) MoveInnerBlock(groupID string, from int, to int) error {
	idx, err := d.findGroup(groupID)
	if err != nil {
		return err
	}

	group := &d.Blocks[idx]
	if from < 0 || from >= len(group.InnerBlocks) || to < 0 || to >= len(group.InnerBlocks) {
		return ErrInvalidMove
	}
	if from == to {
		return nil
	}

	block := group.InnerBlocks[from]
	inner := append(group.InnerBlocks[:from:from], group.InnerBlocks[from+1:]...)
	rest := append([]formTypes.Block{}, inner[to:]...)
	group.InnerBlocks = append(append(inner[:to:to], block), rest...)
	return nil
}

// Structure materializes the draft into the single document handed to the
// form collection store on save.
func (d *Draft) Structure() formTypes.FormStructure {
	return formTypes.FormStructure{
		Blocks:   append([]formTypes.Block{}, d.Blocks...),
		Theme:    d.Theme,
		Settings: d.Settings,
	}
}

// Validate enforces the save-time invariants: a non-empty title, the
// welcome screen at position 0 if present, and no nested groups.
func (d *Draft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return ErrEmptyTitle
	}
	welcomeCount := 0
	for _, b := range d.Blocks {
		if b.Name == formTypes.BLOCK_KIND_WELCOME_SCREEN {
			welcomeCount++
		}
	}
	if welcomeCount > 1 {
		return ErrDuplicateWelcome
	}
	return formTypes.ValidateBlocks(d.Blocks)
}
