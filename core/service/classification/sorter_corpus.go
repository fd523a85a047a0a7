package classification

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Sample is one labeled training message.
type Sample struct {
	Subject string `yaml:"subject" json:"subject"`
	Body    string `yaml:"body" json:"body"`
	Label   string `yaml:"label" json:"label"`
}

// Document returns the text the extractor sees for this sample.
func (s Sample) Document() string {
	return s.Subject + " " + s.Body
}

// Corpus is an ordered set of labeled samples.
type Corpus []Sample

// Documents returns the sample documents in order.
func (c Corpus) Documents() []string {
	out := make([]string, len(c))
	for i, s := range c {
		out[i] = s.Document()
	}
	return out
}

// Labels returns the sample labels in order.
func (c Corpus) Labels() []string {
	out := make([]string, len(c))
	for i, s := range c {
		out[i] = s.Label
	}
	return out
}

// Validate checks that the corpus is non-empty, fully labeled and has at least two classes.
func (c Corpus) Validate() error {
	if len(c) == 0 {
		return fmt.Errorf("%w: corpus is empty", ErrInvalidCorpus)
	}
	distinct := make(map[string]struct{})
	for i, s := range c {
		if strings.TrimSpace(s.Label) == "" {
			return fmt.Errorf("%w: record %d has no label", ErrInvalidCorpus, i)
		}
		distinct[s.Label] = struct{}{}
	}
	if len(distinct) < 2 {
		return fmt.Errorf("%w: need at least 2 distinct labels, got %d", ErrInvalidCorpus, len(distinct))
	}
	return nil
}

type corpusFile struct {
	Samples []Sample `yaml:"samples"`
}

// LoadCorpusFile reads a YAML corpus of the form:
//
//	samples:
//	  - subject: "..."
//	    body: "..."
//	    label: Urgent
func LoadCorpusFile(path string) (Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus %s: %w", path, err)
	}
	return ParseCorpus(data)
}

// ParseCorpus decodes a YAML corpus document and validates it.
func ParseCorpus(data []byte) (Corpus, error) {
	var f corpusFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCorpus, err)
	}
	corpus := Corpus(f.Samples)
	if err := corpus.Validate(); err != nil {
		return nil, err
	}
	return corpus, nil
}

// ReferenceCorpus returns the built-in 20-sample training corpus.
func ReferenceCorpus() Corpus {
	out := make(Corpus, len(referenceSamples))
	copy(out, referenceSamples)
	return out
}

var referenceSamples = []Sample{
	{Subject: "Meeting rescheduled to tomorrow", Body: "The meeting with HR is moved to 10 AM tomorrow.", Label: "Routine"},
	{Subject: "Urgent: Submit your project report", Body: "Please submit your project report by 5 PM today.", Label: "Urgent"},
	{Subject: "Win a free vacation now!!!", Body: "Congratulations! You have won a free trip. Click here to claim.", Label: "Spam"},
	{Subject: "Leave request for next week", Body: "Requesting approval for 5 days leave next week.", Label: "Routine"},
	{Subject: "New applicant for software engineer role", Body: "John Doe has applied for the software engineer position.", Label: "Custom"},
	{Subject: "Weekly department newsletter", Body: "Here is the weekly newsletter for all faculty members.", Label: "Routine"},
	{Subject: "Research funding deadline extended", Body: "The deadline for the research funding proposal is extended.", Label: "Urgent"},
	{Subject: "Lunch invite from team", Body: "Let’s meet for lunch tomorrow at the cafeteria.", Label: "Routine"},
	{Subject: "Final warning about HR complaint", Body: "This is your final warning for not following HR policies.", Label: "Urgent"},
	{Subject: "Student request for assignment help", Body: "Can you please help me with the assignment deadline?", Label: "Custom"},
	{Subject: "Salary revision letter", Body: "Your salary revision is approved. Details attached.", Label: "Urgent"},
	{Subject: "Important: Department meeting today", Body: "There is a meeting scheduled today at 3 PM in the conference room.", Label: "Urgent"},
	{Subject: "Exclusive offer on new software tools", Body: "Get 70% off on software licenses. Limited time offer!", Label: "Spam"},
	{Subject: "Reminder: Fill attendance sheet", Body: "Please fill in your attendance before 6 PM.", Label: "Routine"},
	{Subject: "New resume received for developer position", Body: "Received a new resume for the open developer role.", Label: "Custom"},
	{Subject: "Urgent: Server downtime alert", Body: "Server will be down for maintenance tonight.", Label: "Urgent"},
	{Subject: "Spam offer for loan approval", Body: "Get instant loan approved in 10 minutes. Apply now!", Label: "Spam"},
	{Subject: "Faculty meeting agenda for tomorrow", Body: "Tomorrow’s meeting will discuss faculty workloads.", Label: "Routine"},
	{Subject: "Vacation trip free for first responders", Body: "Free travel package to Maldives for early signups!", Label: "Spam"},
	{Subject: "Request to schedule lab maintenance", Body: "Lab maintenance scheduled on Friday afternoon.", Label: "Routine"},
}
