package types

import "errors"

// block kinds
const (
	BLOCK_KIND_WELCOME_SCREEN  = "welcome-screen"
	BLOCK_KIND_STATEMENT       = "statement"
	BLOCK_KIND_SHORT_TEXT      = "short-text"
	BLOCK_KIND_LONG_TEXT       = "long-text"
	BLOCK_KIND_MULTIPLE_CHOICE = "multiple-choice"
	BLOCK_KIND_DROPDOWN        = "dropdown"
	BLOCK_KIND_DATE            = "date"
	BLOCK_KIND_NUMBER          = "number"
	BLOCK_KIND_EMAIL           = "email"
	BLOCK_KIND_WEBSITE         = "website"
	BLOCK_KIND_GROUP           = "group"
)

var blockKinds = map[string]struct{}{
	BLOCK_KIND_WELCOME_SCREEN:  {},
	BLOCK_KIND_STATEMENT:       {},
	BLOCK_KIND_SHORT_TEXT:      {},
	BLOCK_KIND_LONG_TEXT:       {},
	BLOCK_KIND_MULTIPLE_CHOICE: {},
	BLOCK_KIND_DROPDOWN:        {},
	BLOCK_KIND_DATE:            {},
	BLOCK_KIND_NUMBER:          {},
	BLOCK_KIND_EMAIL:           {},
	BLOCK_KIND_WEBSITE:         {},
	BLOCK_KIND_GROUP:           {},
}

func IsValidBlockKind(kind string) bool {
	_, ok := blockKinds[kind]
	return ok
}

// IsQuestionKind reports whether a block kind collects an answer value.
// Welcome screens and statements are display-only; groups are containers.
func IsQuestionKind(kind string) bool {
	switch kind {
	case BLOCK_KIND_WELCOME_SCREEN, BLOCK_KIND_STATEMENT, BLOCK_KIND_GROUP:
		return false
	default:
		return IsValidBlockKind(kind)
	}
}

type Block struct {
	ID         string          `bson:"id" json:"id"`
	Name       string          `bson:"name" json:"name"`
	Attributes BlockAttributes `bson:"attributes" json:"attributes"`
	// InnerBlocks is only set for group blocks and must not contain
	// nested groups.
	InnerBlocks []Block `bson:"innerBlocks,omitempty" json:"innerBlocks,omitempty"`
}

type BlockAttributes struct {
	Label       string   `bson:"label" json:"label"`
	Required    bool     `bson:"required,omitempty" json:"required,omitempty"`
	Description string   `bson:"description,omitempty" json:"description,omitempty"`
	ButtonText  string   `bson:"buttonText,omitempty" json:"buttonText,omitempty"`
	Placeholder string   `bson:"placeholder,omitempty" json:"placeholder,omitempty"`
	Choices     []Choice `bson:"choices,omitempty" json:"choices,omitempty"`
	Multiple    bool     `bson:"multiple,omitempty" json:"multiple,omitempty"`
	Format      string   `bson:"format,omitempty" json:"format,omitempty"`
	Separator   string   `bson:"separator,omitempty" json:"separator,omitempty"`
	Min         *float64 `bson:"min,omitempty" json:"min,omitempty"`
	Max         *float64 `bson:"max,omitempty" json:"max,omitempty"`
}

type Choice struct {
	Value string `bson:"value" json:"value"`
	Label string `bson:"label" json:"label"`
}

// ValidateBlocks checks the save-time invariants of an ordered block list:
// at most one welcome-screen and only at position 0, and group blocks
// containing only non-group blocks.
func ValidateBlocks(blocks []Block) error {
	for i, b := range blocks {
		if !IsValidBlockKind(b.Name) {
			return errors.New("unknown block kind: " + b.Name)
		}
		if b.Name == BLOCK_KIND_WELCOME_SCREEN && i != 0 {
			return ErrWelcomeScreenPosition
		}
		if b.Name != BLOCK_KIND_GROUP && len(b.InnerBlocks) > 0 {
			return errors.New("only group blocks may contain inner blocks")
		}
		for _, inner := range b.InnerBlocks {
			if inner.Name == BLOCK_KIND_GROUP {
				return ErrNestedGroup
			}
			if inner.Name == BLOCK_KIND_WELCOME_SCREEN {
				return ErrWelcomeScreenPosition
			}
			if !IsValidBlockKind(inner.Name) {
				return errors.New("unknown block kind: " + inner.Name)
			}
		}
	}
	return nil
}
