package action

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/CycleVars_Go/internal/domain"
)

func TestParseStep(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    Step
		wantErr bool
	}{
		{name: "console", line: "[console] say reset", want: Step{Kind: KindConsole, Arg: "say reset"}},
		{name: "tag is case insensitive", line: "[OP] give {player} diamond", want: Step{Kind: KindOp, Arg: "give {player} diamond"}},
		{name: "message", line: "  [message]  Your kills were reset ", want: Step{Kind: KindMessage, Arg: "Your kills were reset"}},
		{name: "delay seconds", line: "[delay] 20", want: Step{Kind: KindDelay, Arg: "20", Delay: 20 * time.Second}},
		{name: "delay duration", line: "[delay] 1m30s", want: Step{Kind: KindDelay, Arg: "1m30s", Delay: 90 * time.Second}},
		{name: "negative delay", line: "[delay] -5", wantErr: true},
		{name: "delay too long", line: "[delay] 48h", wantErr: true},
		{name: "garbage delay", line: "[delay] soon", wantErr: true},
		{name: "missing tag", line: "say hello", wantErr: true},
		{name: "unclosed tag", line: "[console say hello", wantErr: true},
		{name: "unknown tag", line: "[sound] ding", wantErr: true},
		{name: "empty argument", line: "[console]", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStep(tt.line)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidAction)
				assert.True(t, domain.IsConfiguration(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSteps_ReportsPosition(t *testing.T) {
	_, err := ParseSteps([]string{"[console] ok", "[bogus] x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "action 2")
}

func TestRender(t *testing.T) {
	player := &domain.Player{ID: "abc", Name: "alice"}

	assert.Equal(t, "give alice diamond for daily_kills",
		Render("give {player} diamond for {variable}", "daily_kills", player))
	assert.Equal(t, "id=abc", Render("id={player_id}", "x", player))
	assert.Equal(t, "say {player} daily_kills", Render("say {player} {variable}", "daily_kills", nil))
}
