package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/maheshsundaram/gemini-voice-input/internal/client"
	"github.com/maheshsundaram/gemini-voice-input/internal/domain"
	"github.com/maheshsundaram/gemini-voice-input/internal/services"
	"github.com/maheshsundaram/gemini-voice-input/internal/session"
	"github.com/maheshsundaram/gemini-voice-input/internal/transcript"
)

func main() {
	_ = godotenv.Load()

	gateway := flag.String("gateway", "http://localhost:8080", "Base URL of the transcription gateway")
	token := flag.String("token", os.Getenv("GEMINI_API_TOKEN"), "Optional API token forwarded to the gateway")
	pdfPath := flag.String("pdf", "", "Optional path to export the transcript as PDF")
	flag.Parse()

	sources := flag.Args()
	if len(sources) == 0 {
		fmt.Fprintln(os.Stderr, "usage: recorder [flags] <audio-file> [<audio-file>...]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	transcriptLog := transcript.NewLog()
	gw := client.New(*gateway, *token)

	printStatus := func(msg string) { log.Printf("status: %s", msg) }
	printError := func(msg string) { log.Printf("error: %s", msg) }

	submitter := client.NewSubmitter(gw, transcriptLog, printStatus, printError)

	// One record-then-transcribe cycle per source file. The controller's
	// handoff is detached, so each cycle waits for its call to resolve
	// before the next session starts.
	for _, source := range sources {
		source := source
		done := make(chan struct{})

		ctrl := session.NewController(
			func() (session.CaptureDevice, error) { return openFileDevice(source) },
			func(artifact domain.AudioArtifact) {
				submitter.Submit(artifact)
				close(done)
			},
			session.Notify{Status: printStatus, Error: printError},
		)

		if err := ctrl.Start(); err != nil {
			log.Printf("skipping %s: %v", source, err)
			continue
		}

		if err := ctrl.Stop(); err != nil {
			log.Printf("skipping %s: %v", source, err)
			continue
		}

		<-done
	}

	for _, entry := range transcriptLog.Entries() {
		fmt.Printf("[%s] %s\n", entry.Timestamp.Local().Format(domain.TimeLayout), entry.Text)
	}

	if *pdfPath != "" {
		pdf := services.NewPDFService()
		if err := pdf.GeneratePDF(transcriptLog.Entries(), "Transcript", *pdfPath); err != nil {
			log.Fatalf("pdf export failed: %v", err)
		}
		log.Printf("transcript exported to %s", *pdfPath)
	}
}
