package builder

import (
	"crypto/rand"
	"encoding/hex"

	formTypes "github.com/finnscodingadventure/digilizeforms/pkg/forms/types"
)

// newBlockID creates a unique block id using crypto/rand
func newBlockID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return "block-fallback"
	}
	return "block-" + hex.EncodeToString(bytes)
}

// DefaultTheme returns the presentation defaults applied to new drafts.
func DefaultTheme() formTypes.Theme {
	return formTypes.Theme{
		Font:                 "Roboto",
		BackgroundColor:      "#1e1e2d",
		QuestionsColor:       "#ffffff",
		AnswersColor:         "#e2e8f0",
		ButtonsFontColor:     "#ffffff",
		ButtonsBgColor:       "#4f46e5",
		ButtonsBorderRadius:  8,
		ProgressBarFillColor: "#4f46e5",
		ProgressBarBgColor:   "#374151",
	}
}

func DefaultSettings() formTypes.FormSettings {
	return formTypes.FormSettings{
		DisableProgressBar:   false,
		DisableWheelSwiping:  false,
		ShowQuestionsNumbers: true,
	}
}

func defaultChoices() []formTypes.Choice {
	return []formTypes.Choice{
		{Value: "option1", Label: "Option 1"},
		{Value: "option2", Label: "Option 2"},
		{Value: "option3", Label: "Option 3"},
	}
}

// newBlock builds a block of the given kind with its type-specific default
// attributes.
func newBlock(kind string) formTypes.Block {
	block := formTypes.Block{
		ID:   newBlockID(),
		Name: kind,
		Attributes: formTypes.BlockAttributes{
			Label:    "New Question",
			Required: true,
		},
	}

	switch kind {
	case formTypes.BLOCK_KIND_WELCOME_SCREEN:
		block.Attributes.Label = "Welcome to our form"
		block.Attributes.Description = "Please answer the following questions"
		block.Attributes.ButtonText = "Start"
		block.Attributes.Required = false
	case formTypes.BLOCK_KIND_STATEMENT:
		block.Attributes.Label = "This is a statement"
		block.Attributes.ButtonText = "Continue"
		block.Attributes.Required = false
	case formTypes.BLOCK_KIND_MULTIPLE_CHOICE:
		block.Attributes.Choices = defaultChoices()
		block.Attributes.Multiple = false
	case formTypes.BLOCK_KIND_DROPDOWN:
		block.Attributes.Choices = defaultChoices()
	case formTypes.BLOCK_KIND_DATE:
		block.Attributes.Format = "MMDDYYYY"
		block.Attributes.Separator = "/"
	case formTypes.BLOCK_KIND_GROUP:
		block.Attributes.Label = "Group of questions"
		block.Attributes.Required = false
		block.InnerBlocks = []formTypes.Block{
			{
				ID:   newBlockID(),
				Name: formTypes.BLOCK_KIND_SHORT_TEXT,
				Attributes: formTypes.BlockAttributes{
					Label:    "Question 1",
					Required: true,
				},
			},
			{
				ID:   newBlockID(),
				Name: formTypes.BLOCK_KIND_SHORT_TEXT,
				Attributes: formTypes.BlockAttributes{
					Label:    "Question 2",
					Required: true,
				},
			},
		}
	}

	return block
}
