package types

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const DEFAULT_FORM_TITLE = "Untitled Form"

type FormDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID     string             `bson:"ownerId" json:"ownerId"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	// Structure is nil for projection-limited list entries.
	Structure   *FormStructure `bson:"structure,omitempty" json:"structure,omitempty"`
	IsPublished bool           `bson:"isPublished" json:"isPublished"`
	CreatedAt   time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time      `bson:"updatedAt" json:"updatedAt"`
}

// HasStructure reports if the full form definition is loaded, not just the
// list projection.
func (f *FormDocument) HasStructure() bool {
	return f != nil && f.Structure != nil
}

func (f *FormDocument) Summary() FormSummary {
	return FormSummary{
		ID:          f.ID.Hex(),
		Title:       f.Title,
		UpdatedAt:   f.UpdatedAt,
		IsPublished: f.IsPublished,
	}
}

type FormSummary struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	UpdatedAt   time.Time `json:"updatedAt"`
	IsPublished bool      `json:"isPublished"`
}

type FormStructure struct {
	Blocks   []Block      `bson:"blocks" json:"blocks"`
	Theme    Theme        `bson:"theme" json:"theme"`
	Settings FormSettings `bson:"settings" json:"settings"`
}

type Theme struct {
	Font                 string `bson:"font" json:"font"`
	BackgroundColor      string `bson:"backgroundColor" json:"backgroundColor"`
	QuestionsColor       string `bson:"questionsColor" json:"questionsColor"`
	AnswersColor         string `bson:"answersColor" json:"answersColor"`
	ButtonsFontColor     string `bson:"buttonsFontColor" json:"buttonsFontColor"`
	ButtonsBgColor       string `bson:"buttonsBgColor" json:"buttonsBgColor"`
	ButtonsBorderRadius  int    `bson:"buttonsBorderRadius" json:"buttonsBorderRadius"`
	ProgressBarFillColor string `bson:"progressBarFillColor" json:"progressBarFillColor"`
	ProgressBarBgColor   string `bson:"progressBarBgColor" json:"progressBarBgColor"`
}

type FormSettings struct {
	DisableProgressBar   bool `bson:"disableProgressBar" json:"disableProgressBar"`
	DisableWheelSwiping  bool `bson:"disableWheelSwiping" json:"disableWheelSwiping"`
	ShowQuestionsNumbers bool `bson:"showQuestionsNumbers" json:"showQuestionsNumbers"`
}

// FormPatch is a sparse update: only non-nil fields are written.
type FormPatch struct {
	Title       *string        `json:"title,omitempty"`
	Description *string        `json:"description,omitempty"`
	Structure   *FormStructure `json:"structure,omitempty"`
	IsPublished *bool          `json:"isPublished,omitempty"`
}

func (p FormPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Structure == nil && p.IsPublished == nil
}
