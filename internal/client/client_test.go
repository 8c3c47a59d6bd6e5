package client

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/maheshsundaram/gemini-voice-input/internal/domain"
	"github.com/maheshsundaram/gemini-voice-input/internal/session"
	"github.com/maheshsundaram/gemini-voice-input/internal/transcript"
)

func newFakeGateway(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func TestTranscribeSendsMultipart(t *testing.T) {
	var gotAudio []byte
	var gotToken string

	gateway := newFakeGateway(t, func(w http.ResponseWriter, r *http.Request) {
		file, _, err := r.FormFile("audio_file")
		if err != nil {
			t.Errorf("missing audio_file field: %v", err)
			http.Error(w, "missing audio", http.StatusBadRequest)
			return
		}
		defer file.Close()

		gotAudio, _ = io.ReadAll(file)
		gotToken = r.FormValue("gemini_api_token")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"transcription":"ok"}`))
	})

	c := New(gateway.URL, "caller-key")
	text, err := c.Transcribe(context.Background(), domain.AudioArtifact{Bytes: []byte("audio-bytes")})
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}

	if text != "ok" {
		t.Fatalf("expected text %q, got %q", "ok", text)
	}

	if !bytes.Equal(gotAudio, []byte("audio-bytes")) {
		t.Fatalf("expected uploaded audio %q, got %q", "audio-bytes", gotAudio)
	}

	if gotToken != "caller-key" {
		t.Fatalf("expected token %q, got %q", "caller-key", gotToken)
	}
}

func TestTranscribeOmitsEmptyToken(t *testing.T) {
	var hadToken bool

	gateway := newFakeGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		_, hadToken = r.MultipartForm.Value["gemini_api_token"]

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"transcription":""}`))
	})

	c := New(gateway.URL, "")
	if _, err := c.Transcribe(context.Background(), domain.AudioArtifact{Bytes: []byte("audio")}); err != nil {
		t.Fatalf("transcribe: %v", err)
	}

	if hadToken {
		t.Fatalf("expected no token field for empty credential")
	}
}

func TestTranscribeGatewayError(t *testing.T) {
	gateway := newFakeGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"transcription failed","details":"model overloaded"}`))
	})

	c := New(gateway.URL, "")
	_, err := c.Transcribe(context.Background(), domain.AudioArtifact{Bytes: []byte("audio")})
	if err == nil {
		t.Fatalf("expected gateway error")
	}

	if !strings.Contains(err.Error(), "transcription failed") || !strings.Contains(err.Error(), "model overloaded") {
		t.Fatalf("expected error and details in message, got %v", err)
	}
}

func TestSubmitterAppendsOnSuccess(t *testing.T) {
	gateway := newFakeGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"transcription":"hello"}`))
	})

	log := transcript.NewLog()
	s := NewSubmitter(New(gateway.URL, ""), log, nil, nil)
	s.Submit(domain.AudioArtifact{Bytes: []byte("audio")})

	entries := log.Entries()
	if len(entries) != 1 || entries[0].Text != "hello" {
		t.Fatalf("expected one entry %q, got %v", "hello", entries)
	}
}

func TestSubmitterLeavesLogOnFailure(t *testing.T) {
	gateway := newFakeGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"transcription failed"}`))
	})

	var errMsg string
	log := transcript.NewLog()
	s := NewSubmitter(New(gateway.URL, ""), log, nil, func(msg string) { errMsg = msg })
	s.Submit(domain.AudioArtifact{Bytes: []byte("audio")})

	if log.Len() != 0 {
		t.Fatalf("expected untouched log after failure, got %d entries", log.Len())
	}

	if !strings.Contains(errMsg, "Transcription failed") {
		t.Fatalf("expected failure message, got %q", errMsg)
	}
}

func TestSubmitterDropsEmptyResult(t *testing.T) {
	gateway := newFakeGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"transcription":""}`))
	})

	var status string
	log := transcript.NewLog()
	s := NewSubmitter(New(gateway.URL, ""), log, func(msg string) { status = msg }, nil)
	s.Submit(domain.AudioArtifact{Bytes: []byte("audio")})

	if log.Len() != 0 {
		t.Fatalf("expected no entry for empty result, got %d", log.Len())
	}

	if status == "" {
		t.Fatalf("expected a status update for empty result")
	}
}

// pipeDevice feeds scripted fragments through the capture callback.
type pipeDevice struct {
	fragments  [][]byte
	onFragment func(data []byte)
}

func (d *pipeDevice) Start(onFragment func(data []byte)) error {
	d.onFragment = onFragment
	return nil
}

func (d *pipeDevice) Stop() error {
	for _, fragment := range d.fragments {
		d.onFragment(fragment)
	}
	return nil
}

func (d *pipeDevice) Release() {}

func TestRecordTranscribePipeline(t *testing.T) {
	var gotAudio []byte
	gateway := newFakeGateway(t, func(w http.ResponseWriter, r *http.Request) {
		file, _, err := r.FormFile("audio_file")
		if err != nil {
			t.Errorf("missing audio_file field: %v", err)
			http.Error(w, "missing audio", http.StatusBadRequest)
			return
		}
		defer file.Close()
		gotAudio, _ = io.ReadAll(file)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"transcription":"hi there"}`))
	})

	log := transcript.NewLog()
	submitter := NewSubmitter(New(gateway.URL, ""), log, nil, nil)

	device := &pipeDevice{fragments: [][]byte{[]byte("frag-one"), []byte("frag-two")}}
	done := make(chan struct{})

	ctrl := session.NewController(
		func() (session.CaptureDevice, error) { return device, nil },
		func(artifact domain.AudioArtifact) {
			submitter.Submit(artifact)
			close(done)
		},
		session.Notify{},
	)

	if err := ctrl.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	if err := ctrl.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for transcription to resolve")
	}

	if !bytes.Equal(gotAudio, []byte("frag-onefrag-two")) {
		t.Fatalf("expected concatenated fragments uploaded, got %q", gotAudio)
	}

	entries := log.Entries()
	if len(entries) != 1 || entries[0].Text != "hi there" {
		t.Fatalf("expected one entry %q, got %v", "hi there", entries)
	}
}
