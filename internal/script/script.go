// Package script builds the tick-scheduled mirv_cmd script HLAE replays
// during demo playback, and the movie config the game executes first.
package script

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/oszuidwest/zwfm-demorecorder/internal/capture"
	"github.com/oszuidwest/zwfm-demorecorder/internal/config"
	"github.com/oszuidwest/zwfm-demorecorder/internal/types"
)

// Ticks are relative to demo start.
const (
	// TickExecConfig runs the movie config.
	TickExecConfig = 2
	// TickSetup leaves the movie config time to apply before safety commands override it.
	TickSetup = TickExecConfig + 64
	// TickGoto fast-forwards to the pre-roll tick.
	TickGoto = TickSetup + 64
	// PrerollTicks is how far before the start tick playback resumes so the
	// world is loaded when recording begins.
	PrerollTicks = 256
	// QuitOffset is the delay after the end tick before playback stops.
	QuitOffset = 64
)

// safetyCommands always run, whatever the movie config did.
var safetyCommands = []string{
	"sv_cheats 1",
	"host_timescale 0",
	"mirv_snd_timescale 1",
	"mirv_gameoverlay enable 0",
}

// Action is one timed command of the script.
type Action struct {
	Index   int
	Tick    int
	Command string
}

// builder numbers actions in emission order.
type builder struct {
	actions []Action
}

func (b *builder) add(tick int, command string) {
	b.actions = append(b.actions, Action{Index: len(b.actions) + 1, Tick: tick, Command: command})
}

// Generate returns the ordered actions for a run. It performs no I/O.
// outputDir is where HLAE writes its takes.
func Generate(cfg *config.Run, outputDir string) []Action {
	b := &builder{}

	b.add(TickExecConfig, "exec "+types.UserConfigName)

	for _, cmd := range safetyCommands {
		b.add(TickSetup, cmd)
	}
	b.add(TickSetup, "host_framerate "+strconv.Itoa(cfg.FrameRate))
	b.add(TickSetup, fmt.Sprintf(`mirv_streams record name "%s"`, capture.EscapePath(outputDir)))

	b.add(TickGoto, "demo_gototick "+strconv.Itoa(PrerollTick(cfg.StartTick)))

	if cfg.FocusSteamID != 0 {
		b.add(TickGoto+1, "spec_lock_to_accountid "+formatID(cfg.FocusSteamID))
	}
	b.add(TickGoto+1, "mirv_deathmsg lifetime "+strconv.Itoa(cfg.DeathNoticesDuration))
	b.add(TickGoto+1, "mirv_deathmsg filter add attackerIsLocal=0 victimIsLocal=0 block=1")
	for _, id := range cfg.BlockedSteamIDs {
		b.add(TickGoto+1, BlockFilter(id))
	}
	for _, id := range cfg.HighlightSteamIDs {
		b.add(TickGoto+1, HighlightFilter(id))
	}

	b.add(cfg.StartTick, fmt.Sprintf("mirv_streams add normal %s; mirv_streams record start", types.StreamName))
	b.add(cfg.EndTick, "mirv_streams record end")

	if cfg.AutoCloseGame {
		b.add(cfg.EndTick+QuitOffset, "quit")
	} else {
		b.add(cfg.EndTick+QuitOffset, "disconnect")
	}

	return b.actions
}

// PrerollTick returns the tick playback jumps to before recording, never below 1.
func PrerollTick(startTick int) int {
	return max(1, startTick-PrerollTicks)
}

// BlockFilter returns the death notice filter hiding kills by a player.
func BlockFilter(id uint64) string {
	return "mirv_deathmsg filter add attackerMatch=x" + formatID(id) + " block=1"
}

// HighlightFilter returns the death notice filter highlighting kills by a player.
func HighlightFilter(id uint64) string {
	return "mirv_deathmsg filter add attackerMatch=x" + formatID(id) + " attackerIsLocal=1"
}

func formatID(id uint64) string {
	return strconv.FormatUint(id, 10)
}

const (
	prologue = "<?xml version=\"1.0\" encoding=\"utf-8\"?>\n<commandSystem>\n\t<commands>\n"
	epilogue = "\t</commands>\n</commandSystem>\n"
)

// Render serializes actions in the mirv_cmd XML format, one element per action.
func Render(actions []Action) string {
	var buf bytes.Buffer
	buf.WriteString(prologue)
	for _, a := range actions {
		fmt.Fprintf(&buf, "\t\t<c id=\"%d\" tick=\"%d\">", a.Index, a.Tick)
		_ = xml.EscapeText(&buf, []byte(a.Command))
		buf.WriteString("</c>\n")
	}
	buf.WriteString(epilogue)
	return buf.String()
}

// UserConfig returns the movie config: the user's console commands, one per line, verbatim.
func UserConfig(commands []string) string {
	return strings.Join(commands, "\n")
}
