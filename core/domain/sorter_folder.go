package domain

import (
	"time"

	"github.com/samber/lo"
)

// Label is a folder / category name produced by the classifier.
type Label string

const (
	LabelUrgent  Label = "Urgent"
	LabelRoutine Label = "Routine"
	LabelSpam    Label = "Spam"
	LabelCustom  Label = "Custom"
)

// DefaultLabels is the folder set of the reference corpus, in display order.
var DefaultLabels = []Label{LabelUrgent, LabelRoutine, LabelSpam, LabelCustom}

// MessageSource records how a message entered the system.
type MessageSource string

const (
	SourceAutoFetch MessageSource = "auto_fetch"
	SourceInbox     MessageSource = "inbox"
)

// Message is one classified message filed into a folder.
type Message struct {
	ID           string        `json:"id" db:"id"`
	Text         string        `json:"text" db:"text"`
	Folder       Label         `json:"folder" db:"folder"`
	Confidence   float64       `json:"confidence" db:"confidence"`
	Source       MessageSource `json:"source" db:"source"`
	Suggestions  []string      `json:"suggestions" db:"-"`
	ModelVersion string        `json:"model_version" db:"model_version"`
	ClassifiedAt time.Time     `json:"classified_at" db:"classified_at"`
}

// Folders maps every folder to the texts filed in it.
type Folders map[Label][]string

// NewFolders returns folders with an empty list for each label.
func NewFolders(labels []Label) Folders {
	f := make(Folders, len(labels))
	for _, l := range labels {
		f[l] = []string{}
	}
	return f
}

// GroupMessages files messages into folders, keeping message order inside each folder.
// Every label in labels is present even when empty.
func GroupMessages(labels []Label, messages []*Message) Folders {
	f := NewFolders(labels)
	for folder, group := range lo.GroupBy(messages, func(m *Message) Label { return m.Folder }) {
		f[folder] = lo.Map(group, func(m *Message, _ int) string { return m.Text })
	}
	return f
}

// Classification is the serving-layer result for one text.
type Classification struct {
	Label         Label             `json:"label"`
	Confidence    float64           `json:"confidence"`
	Probabilities map[Label]float64 `json:"probabilities"`
	Suggestions   []string          `json:"suggestions"`
	ModelVersion  string            `json:"model_version"`
	Cached        bool              `json:"cached"`
}
