package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridfall/gridfall-server/internal/consider"
	"github.com/gridfall/gridfall-server/internal/console"
	"github.com/gridfall/gridfall-server/internal/game"
)

const bestAttackScript = `
function choose(ctx, considerations)
	local best = nil
	local best_score = -1
	considerations:for_each(function(c)
		if c:attack() and c:damage_total() > best_score then
			best = c
			best_score = c:damage_total()
		end
		if best == nil then
			best = c
		end
	end)
	return best
end
`

func TestLuaChoosesByScore(t *testing.T) {
	p, err := NewLua("test", bestAttackScript, console.Nop{})
	require.NoError(t, err)

	cs := consider.NewConsiderations([]consider.Consider{
		damageConsider("weak", 1),
		damageConsider("strong", 7),
		{Action: game.Wait()},
	})

	action, err := p.Choose(cs)
	require.NoError(t, err)
	assert.Equal(t, game.ActionAttack, action.Kind)
	assert.Equal(t, "strong", action.Attack)
}

func TestLuaFallsBackToFirstCandidate(t *testing.T) {
	p, err := NewLua("test", bestAttackScript, console.Nop{})
	require.NoError(t, err)

	cs := consider.NewConsiderations([]consider.Consider{
		moveConsider(0, 1),
		{Action: game.Wait()},
	})

	action, err := p.Choose(cs)
	require.NoError(t, err)
	assert.Equal(t, game.MoveAction(0, 1), action)
}

func TestLuaRejectsScriptWithoutChoose(t *testing.T) {
	_, err := NewLua("bad", `local x = 1`, console.Nop{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "choose")
}

func TestLuaRejectsBrokenScript(t *testing.T) {
	_, err := NewLua("bad", `function choose(`, console.Nop{})
	require.Error(t, err)
}

func TestLuaRuntimeErrorSurfaces(t *testing.T) {
	p, err := NewLua("boom", `
function choose(ctx, considerations)
	error("deliberate failure")
end
`, console.Nop{})
	require.NoError(t, err)

	action, err := p.Choose(consider.NewConsiderations(nil))
	require.Error(t, err)
	assert.Equal(t, game.Wait(), action, "errors fall back to a safe action")
}

func TestLuaNonConsiderationReturnFails(t *testing.T) {
	p, err := NewLua("wrong", `
function choose(ctx, considerations)
	return 42
end
`, console.Nop{})
	require.NoError(t, err)

	action, err := p.Choose(consider.NewConsiderations(nil))
	require.Error(t, err)
	assert.Equal(t, game.Wait(), action)
}

func TestLuaDoubleConsumptionFailsLoudly(t *testing.T) {
	p, err := NewLua("greedy", `
function choose(ctx, considerations)
	local first = nil
	considerations:for_each(function(c)
		if first == nil then first = c end
	end)
	considerations:for_each(function(c) end)
	return first
end
`, console.Nop{})
	require.NoError(t, err)

	action, err := p.Choose(consider.NewConsiderations([]consider.Consider{
		{Action: game.Wait()},
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exhausted")
	assert.Equal(t, game.Wait(), action)
}

func TestLuaConsolePrint(t *testing.T) {
	bus := console.NewBus()
	p, err := NewLua("chatty", `
function choose(ctx, considerations)
	ctx.console:print("squeak")
	local first = nil
	considerations:for_each(function(c)
		if first == nil then first = c end
	end)
	return first
end
`, bus)
	require.NoError(t, err)

	_, err = p.Choose(consider.NewConsiderations([]consider.Consider{
		{Action: game.Wait()},
	}))
	require.NoError(t, err)

	msgs := bus.Drain()
	require.Len(t, msgs, 1)
	assert.Equal(t, "squeak", msgs[0].Text)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rat.lua"), []byte(bestAttackScript), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	set := NewSet(Aggressive{})
	require.NoError(t, LoadDir(dir, console.Nop{}, set))
	assert.ElementsMatch(t, []string{"rat"}, set.Names())

	_, isLua := set.For("rat").(*Lua)
	assert.True(t, isLua)
}

func TestLoadDirMissingIsFine(t *testing.T) {
	set := NewSet(Aggressive{})
	require.NoError(t, LoadDir(filepath.Join(t.TempDir(), "nope"), console.Nop{}, set))
	assert.Empty(t, set.Names())
}
