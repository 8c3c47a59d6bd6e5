package client

import (
	"context"
	"fmt"

	"github.com/maheshsundaram/gemini-voice-input/internal/domain"
	"github.com/maheshsundaram/gemini-voice-input/internal/transcript"
)

// Submitter bridges finalized artifacts to the transcript log: it forwards
// each artifact to the gateway and appends the result on success. A failed
// call leaves the log untouched and updates the error surface instead.
type Submitter struct {
	client   *Client
	log      *transcript.Log
	onStatus func(msg string)
	onError  func(msg string)
}

func NewSubmitter(client *Client, log *transcript.Log, onStatus, onError func(msg string)) *Submitter {
	return &Submitter{
		client:   client,
		log:      log,
		onStatus: onStatus,
		onError:  onError,
	}
}

// Submit runs one transcription call to completion. It is intended to be
// invoked from the session controller's detached handoff goroutine.
func (s *Submitter) Submit(artifact domain.AudioArtifact) {
	text, err := s.client.Transcribe(context.Background(), artifact)
	if err != nil {
		s.error(fmt.Sprintf("Transcription failed: %v", err))
		return
	}

	if s.log.Append(text) {
		s.status("Transcription complete")
		return
	}

	s.status("No speech detected")
}

func (s *Submitter) status(msg string) {
	if s.onStatus != nil {
		s.onStatus(msg)
	}
}

func (s *Submitter) error(msg string) {
	if s.onError != nil {
		s.onError(msg)
	}
}
