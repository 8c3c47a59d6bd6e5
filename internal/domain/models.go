package domain

import "time"

// AudioArtifact is the finalized audio payload produced by one recording
// session. It is consumed exactly once by a transcription call and not
// retained afterwards.
type AudioArtifact struct {
	Bytes    []byte
	MIMEType string
}

// TranscriptEntry is one transcription result in the transcript log.
type TranscriptEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Text      string    `json:"text"`
}

// TimeLayout is the display precision for transcript timestamps.
const TimeLayout = "15:04:05"

// AudioMIMEType is the fixed encoding label attached to every finalized
// artifact and to the inline payload sent upstream.
const AudioMIMEType = "audio/webm"
