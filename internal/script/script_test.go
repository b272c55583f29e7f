package script

import (
	"encoding/xml"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oszuidwest/zwfm-demorecorder/internal/config"
)

func baseRun() *config.Run {
	cfg := &config.Run{
		StartTick:      5000,
		EndTick:        9000,
		OutputFilename: "round.mp4",
		RawDestination: `C:\raw`,
	}
	cfg.ApplyDefaults()
	return cfg
}

func commands(actions []Action, prefix string) []Action {
	var out []Action
	for _, a := range actions {
		if strings.HasPrefix(a.Command, prefix) {
			out = append(out, a)
		}
	}
	return out
}

func TestGenerate_IndicesAreContiguous(t *testing.T) {
	variants := map[string]func(*config.Run){
		"minimal":    func(*config.Run) {},
		"focus":      func(c *config.Run) { c.FocusSteamID = 42 },
		"lists":      func(c *config.Run) { c.BlockedSteamIDs = []uint64{1, 2, 3}; c.HighlightSteamIDs = []uint64{4} },
		"auto close": func(c *config.Run) { c.AutoCloseGame = true },
	}

	for name, mutate := range variants {
		t.Run(name, func(t *testing.T) {
			cfg := baseRun()
			mutate(cfg)
			actions := Generate(cfg, `C:\raw\round`)
			require.NotEmpty(t, actions)
			for i, a := range actions {
				assert.Equal(t, i+1, a.Index)
			}
		})
	}
}

func TestGenerate_Order(t *testing.T) {
	cfg := baseRun()
	cfg.FocusSteamID = 76561198000000001
	cfg.BlockedSteamIDs = []uint64{11}
	cfg.HighlightSteamIDs = []uint64{22}

	actions := Generate(cfg, `C:\raw\round`)

	want := []Action{
		{1, TickExecConfig, "exec movie"},
		{2, TickSetup, "sv_cheats 1"},
		{3, TickSetup, "host_timescale 0"},
		{4, TickSetup, "mirv_snd_timescale 1"},
		{5, TickSetup, "mirv_gameoverlay enable 0"},
		{6, TickSetup, "host_framerate 60"},
		{7, TickSetup, `mirv_streams record name "C:\\raw\\round"`},
		{8, TickGoto, "demo_gototick 4744"},
		{9, TickGoto + 1, "spec_lock_to_accountid 76561198000000001"},
		{10, TickGoto + 1, "mirv_deathmsg lifetime 5"},
		{11, TickGoto + 1, "mirv_deathmsg filter add attackerIsLocal=0 victimIsLocal=0 block=1"},
		{12, TickGoto + 1, "mirv_deathmsg filter add attackerMatch=x11 block=1"},
		{13, TickGoto + 1, "mirv_deathmsg filter add attackerMatch=x22 attackerIsLocal=1"},
		{14, 5000, "mirv_streams add normal defaultNormal; mirv_streams record start"},
		{15, 9000, "mirv_streams record end"},
		{16, 9000 + QuitOffset, "disconnect"},
	}
	assert.Equal(t, want, actions)
}

func TestGenerate_NoFocusSkipsLock(t *testing.T) {
	actions := Generate(baseRun(), "raw")
	assert.Empty(t, commands(actions, "spec_lock_to_accountid"))
}

func TestGenerate_AutoCloseQuits(t *testing.T) {
	cfg := baseRun()
	cfg.AutoCloseGame = true
	actions := Generate(cfg, "raw")

	last := actions[len(actions)-1]
	assert.Equal(t, "quit", last.Command)
	assert.Equal(t, cfg.EndTick+QuitOffset, last.Tick)
	assert.Empty(t, commands(actions, "disconnect"))
}

func TestPrerollTick(t *testing.T) {
	for _, start := range []int{0, 1, 100, 255, 256, 257, 1000, 128000} {
		t.Run(fmt.Sprint(start), func(t *testing.T) {
			want := max(1, start-256)
			assert.Equal(t, want, PrerollTick(start))

			cfg := baseRun()
			cfg.StartTick = start
			cfg.EndTick = start + 10
			got := commands(Generate(cfg, "raw"), "demo_gototick ")
			require.Len(t, got, 1)
			assert.Equal(t, fmt.Sprintf("demo_gototick %d", want), got[0].Command)
		})
	}
}

func TestGenerate_FilterListsKeepOrderAndDuplicates(t *testing.T) {
	cfg := baseRun()
	cfg.BlockedSteamIDs = []uint64{30, 10, 20, 10}
	cfg.HighlightSteamIDs = []uint64{10, 5}

	actions := Generate(cfg, "raw")

	blocked := commands(actions, "mirv_deathmsg filter add attackerMatch=x")
	var blocks, highlights []string
	for _, a := range blocked {
		switch {
		case strings.HasSuffix(a.Command, "block=1"):
			blocks = append(blocks, a.Command)
		case strings.HasSuffix(a.Command, "attackerIsLocal=1"):
			highlights = append(highlights, a.Command)
		}
	}

	assert.Equal(t, []string{BlockFilter(30), BlockFilter(10), BlockFilter(20), BlockFilter(10)}, blocks)
	assert.Equal(t, []string{HighlightFilter(10), HighlightFilter(5)}, highlights)
}

func TestGenerate_RecordingTicksFollowConfig(t *testing.T) {
	for _, tc := range []struct{ start, end int }{{1, 2}, {300, 301}, {64000, 90000}} {
		cfg := baseRun()
		cfg.StartTick, cfg.EndTick = tc.start, tc.end
		cfg.FocusSteamID = 9
		cfg.AutoCloseGame = tc.start%2 == 0

		actions := Generate(cfg, "raw")
		start := commands(actions, "mirv_streams add normal")
		end := commands(actions, "mirv_streams record end")
		require.Len(t, start, 1)
		require.Len(t, end, 1)
		assert.Equal(t, tc.start, start[0].Tick)
		assert.Equal(t, tc.end, end[0].Tick)
	}
}

func TestRender(t *testing.T) {
	actions := []Action{
		{1, 2, "exec movie"},
		{2, 66, `mirv_streams record name "C:\\raw"`},
	}
	out := Render(actions)

	assert.True(t, strings.HasPrefix(out, prologue))
	assert.True(t, strings.HasSuffix(out, epilogue))
	assert.Contains(t, out, `<c id="1" tick="2">exec movie</c>`)
	assert.Contains(t, out, `<c id="2" tick="66">mirv_streams record name &#34;C:\\raw&#34;</c>`)

	var doc struct {
		Commands []struct {
			ID   int    `xml:"id,attr"`
			Tick int    `xml:"tick,attr"`
			Text string `xml:",chardata"`
		} `xml:"commands>c"`
	}
	require.NoError(t, xml.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Commands, 2)
	assert.Equal(t, `mirv_streams record name "C:\\raw"`, doc.Commands[1].Text)
}

func TestUserConfig(t *testing.T) {
	assert.Equal(t, "cl_draw_only_deathnotices 1\nvoice_enable 0", UserConfig([]string{"cl_draw_only_deathnotices 1", "voice_enable 0"}))
	assert.Empty(t, UserConfig(nil))
}
