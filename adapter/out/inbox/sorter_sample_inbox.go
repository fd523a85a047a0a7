// Package inbox provides inbox sources for auto-fetch.
package inbox

import (
	"context"

	"sorter_server/core/port/out"
)

// SampleMessages is the simulated inbox served by SampleSource.
var SampleMessages = []string{
	"Reminder: Project report is due by end of day",
	"Exclusive: You have been selected for a prize!",
	"Please approve my leave for next Thursday",
	"Server outage: unexpected downtime on cluster A",
	"Weekly newsletter: department updates and events",
	"Candidate submission: new resume for developer role",
}

// SampleSource returns a fixed list of messages.
type SampleSource struct {
	messages []string
}

var _ out.InboxSource = (*SampleSource)(nil)

// NewSampleSource serves messages, or SampleMessages when none are given.
func NewSampleSource(messages ...string) *SampleSource {
	if len(messages) == 0 {
		messages = SampleMessages
	}
	cp := make([]string, len(messages))
	copy(cp, messages)
	return &SampleSource{messages: cp}
}

func (s *SampleSource) Fetch(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]string, len(s.messages))
	copy(out, s.messages)
	return out, nil
}
