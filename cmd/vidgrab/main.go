// Command vidgrab lists the formats of a video link through the download
// service and optionally downloads one of them.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/denisAlshanov/vidgrab/internal/browser"
	"github.com/denisAlshanov/vidgrab/internal/config"
	"github.com/denisAlshanov/vidgrab/internal/models"
	"github.com/denisAlshanov/vidgrab/internal/services/backend"
	"github.com/denisAlshanov/vidgrab/internal/services/storage"
	"github.com/denisAlshanov/vidgrab/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(2)
	}

	var (
		flagBackend string
		flagOut     string
		flagFormat  string
		flagName    string
		flagKeepExt bool
		flagMP3     bool
		flagTimeout time.Duration
	)

	flag.StringVar(&flagBackend, "backend", cfg.Backend.URL, "Download service base URL")
	flag.StringVar(&flagOut, "out", cfg.Storage.Dir, "Directory downloads are saved to")
	flag.StringVar(&flagFormat, "format", "", "Format id to download; empty lists the formats")
	flag.StringVar(&flagName, "name", cfg.Download.FileName, "Saved file base name")
	flag.BoolVar(&flagMP3, "mp3", false, "Download the MP3 conversion of -format instead of the stream itself")
	flag.BoolVar(&flagKeepExt, "keep-ext", cfg.Download.PreserveExtension, "Append the format's extension to the file name")
	flag.DurationVar(&flagTimeout, "timeout", cfg.Backend.Timeout, "Request timeout (0 means none)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <video_url>\n", filepath.Base(os.Args[0]))
		fmt.Fprintln(os.Stderr, "\nFlags:")
		flag.PrintDefaults()
	}

	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	// stdout carries the listing only.
	utils.SetOutput(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Stdout, os.Stderr, options{
		backendURL: flagBackend,
		outDir:     flagOut,
		formatID:   strings.TrimSpace(flagFormat),
		fileName:   flagName,
		keepExt:    flagKeepExt,
		mp3:        flagMP3,
		timeout:    flagTimeout,
		link:       flag.Arg(0),
	}))
}

type options struct {
	backendURL string
	outDir     string
	formatID   string
	fileName   string
	keepExt    bool
	mp3        bool
	timeout    time.Duration
	link       string
}

// run returns the process exit code.
func run(ctx context.Context, stdout, stderr io.Writer, opts options) int {
	saver, err := storage.NewLocalSaver(opts.outDir)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to prepare %s: %v\n", opts.outDir, err)
		return 1
	}

	client := backend.NewClient(&config.BackendConfig{URL: opts.backendURL, Timeout: opts.timeout})
	notifier := browser.NotifierFunc(func(_ context.Context, message string) {
		fmt.Fprintln(stderr, message)
	})
	controller := browser.NewController(client, saver, notifier, nil, browser.Options{
		FileName:          opts.fileName,
		PreserveExtension: opts.keepExt,
	})

	if err := controller.FetchFormats(ctx, opts.link); err != nil {
		return 1
	}
	state := controller.State()

	if opts.formatID == "" {
		printListing(stdout, state)
		return 0
	}

	entry := controller.Entry(state.URL, opts.formatID)
	if opts.mp3 {
		mp3, ok := controller.MP3Entry(state.URL, opts.formatID)
		if !ok {
			fmt.Fprintf(stderr, "No MP3 conversion is listed for format %s\n", opts.formatID)
			return 1
		}
		entry = mp3
	} else if entry.Label == "" {
		fmt.Fprintf(stderr, "Format %s is not listed for this link, trying anyway\n", opts.formatID)
	}

	saved, err := controller.DownloadTo(ctx, entry, saver)
	if err != nil {
		return 1
	}

	fmt.Fprintf(stdout, "Saved %s (%s) to %s\n", saved.Name, humanize.Bytes(uint64(saved.Size)), saved.Location)
	return 0
}

func printListing(w io.Writer, state browser.State) {
	if state.Title != "" {
		fmt.Fprintln(w, state.Title)
	}
	printMenu(w, "Video formats", state.Video.Items)
	printMenu(w, "Audio formats", state.Audio.Items)
}

func printMenu(w io.Writer, heading string, items []models.MenuEntry) {
	fmt.Fprintf(w, "\n%s:\n", heading)
	if len(items) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}

	width := 0
	for _, e := range items {
		if len(e.FormatID) > width {
			width = len(e.FormatID)
		}
	}
	for _, e := range items {
		fmt.Fprintf(w, "  %-*s  %s\n", width, e.FormatID, e.Label)
	}
}
