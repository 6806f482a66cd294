package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"bitbucket.org/smartystreets/swapper/contracts"
	"bitbucket.org/smartystreets/swapper/core"
)

// Console renders engine events: a live progress bar on a terminal, plain
// lines everywhere else.
type Console struct {
	writer io.Writer
	names  []string
	notes  string
	bar    *progressbar.ProgressBar
}

func NewConsole(writer io.Writer, manifest contracts.Manifest) *Console {
	names := make([]string, len(manifest.Items))
	for i, item := range manifest.Items {
		names[i] = item.DisplayName()
	}
	console := &Console{writer: writer, names: names, notes: manifest.UnescapedContent()}
	if isTerminal(writer) {
		console.bar = progressbar.NewOptions(100,
			progressbar.OptionSetWriter(writer),
			progressbar.OptionSetWidth(30),
			progressbar.OptionSetPredictTime(false),
			progressbar.OptionClearOnFinish(),
		)
	}
	return console
}

// Drain consumes events until the channel closes and returns the outcome
// carried by the completion event.
func (this *Console) Drain(events <-chan core.Event) (success bool) {
	if this.notes != "" {
		this.println(strings.TrimSpace(this.notes))
	}
	for event := range events {
		switch event.Kind {
		case core.EventProgress:
			this.progress(event.Percent, event.Detail)
		case core.EventItemStatus:
			this.itemStatus(event.Index, event.Status, event.SizeText)
		case core.EventPhase:
			this.println(phaseTitles[event.Phase])
		case core.EventError:
			this.println("[ERROR] " + event.Message)
		case core.EventCompleted:
			success = event.Success
			this.finish(success)
		}
	}
	return success
}

func (this *Console) progress(percent int, detail string) {
	if this.bar == nil {
		return
	}
	this.bar.Describe(truncate(detail, 40))
	_ = this.bar.Set(percent)
}

func (this *Console) itemStatus(index int, status contracts.Status, sizeText string) {
	if status == contracts.StatusDownloading && this.bar != nil {
		return
	}
	if status == contracts.StatusPending && index > 0 {
		return
	}
	if status == contracts.StatusPending {
		this.println(fmt.Sprintf("%d item(s) to update", len(this.names)))
		return
	}
	this.println(fmt.Sprintf("  %-32s %-14s %s", this.name(index), status, sizeText))
}

func (this *Console) finish(success bool) {
	if this.bar != nil {
		_ = this.bar.Finish()
	}
	if success {
		this.println("Update complete.")
	} else {
		this.println("Update failed.")
	}
}

func (this *Console) println(line string) {
	if this.bar != nil {
		_ = this.bar.Clear()
	}
	_, _ = fmt.Fprintln(this.writer, line)
}

func (this *Console) name(index int) string {
	if index < 0 || index >= len(this.names) {
		return fmt.Sprintf("#%d", index)
	}
	return truncate(this.names[index], 32)
}

var phaseTitles = map[contracts.Phase]string{
	contracts.PhaseDownloading:  "Downloading update files...",
	contracts.PhaseAwaitingExit: "Waiting for the application to exit...",
	contracts.PhaseReplacing:    "Replacing files...",
	contracts.PhaseCleaningUp:   "Cleaning up...",
	contracts.PhaseRelaunching:  "Restarting the application...",
}

func truncate(value string, width int) string {
	runes := []rune(value)
	if len(runes) <= width {
		return value
	}
	return string(runes[:width-3]) + "..."
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
