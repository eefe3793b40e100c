package policy

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Shopify/go-lua"

	"github.com/gridfall/gridfall-server/internal/consider"
	"github.com/gridfall/gridfall-server/internal/console"
	"github.com/gridfall/gridfall-server/internal/game"
)

const (
	considerationsTypeName = "considerations"
	considerTypeName       = "consider"
	consoleTypeName        = "console"
)

// Lua is a decision policy scripted in Lua. The script defines a
// global function
//
//	function choose(ctx, considerations) ... end
//
// receiving an explicit context table (ctx.console with a print
// method) and the one-shot considerations list. It must return the
// chosen consideration.
//
// A policy and its VM belong to the authority goroutine; Choose is not
// safe for concurrent use.
type Lua struct {
	name    string
	state   *lua.State
	console console.Handle
}

type considerationsUD struct {
	cs *consider.Considerations
}

type considerUD struct {
	c consider.Consider
}

// NewLua compiles a policy script in a fresh VM.
func NewLua(name, source string, con console.Handle) (*Lua, error) {
	state := lua.NewState()
	lua.OpenLibraries(state)
	registerTypes(state)

	if err := lua.DoString(state, source); err != nil {
		return nil, fmt.Errorf("policy %q: %w", name, err)
	}
	state.Global("choose")
	defined := state.TypeOf(-1) == lua.TypeFunction
	state.Pop(1)
	if !defined {
		return nil, fmt.Errorf("policy %q: script does not define choose()", name)
	}

	return &Lua{name: name, state: state, console: con}, nil
}

func (p *Lua) Name() string { return p.name }

// Choose hands the considerations to the script exactly once. Script
// failures (including consuming the list twice) surface as errors; the
// caller is expected to fall back to a safe action.
func (p *Lua) Choose(cs *consider.Considerations) (game.Action, error) {
	l := p.state
	l.Global("choose")

	// ctx table: explicit context instead of ambient globals.
	l.NewTable()
	l.PushUserData(p.console)
	lua.SetMetaTableNamed(l, consoleTypeName)
	l.SetField(-2, "console")

	l.PushUserData(&considerationsUD{cs: cs})
	lua.SetMetaTableNamed(l, considerationsTypeName)

	if err := l.ProtectedCall(2, 1, 0); err != nil {
		return game.Wait(), fmt.Errorf("policy %q: %w", p.name, err)
	}

	ud, _ := l.ToUserData(-1).(*considerUD)
	l.Pop(1)
	if ud == nil {
		return game.Wait(), fmt.Errorf("policy %q: choose() did not return a consideration", p.name)
	}
	return ud.c.Action, nil
}

func registerTypes(l *lua.State) {
	registerType(l, considerationsTypeName, []lua.RegistryFunction{
		{Name: "for_each", Function: considerationsForEach},
		{Name: "len", Function: considerationsLen},
	})
	registerType(l, considerTypeName, []lua.RegistryFunction{
		{Name: "attack", Function: considerIsAttack},
		{Name: "spell", Function: considerIsSpell},
		{Name: "move", Function: considerIsMove},
		{Name: "damage_total", Function: considerDamageTotal},
		{Name: "debuff_total", Function: considerDebuffTotal},
		{Name: "movement", Function: considerMovement},
	})
	registerType(l, consoleTypeName, []lua.RegistryFunction{
		{Name: "print", Function: consolePrint},
	})
}

func registerType(l *lua.State, name string, methods []lua.RegistryFunction) {
	lua.NewMetaTable(l, name)
	l.NewTable()
	lua.SetFunctions(l, methods, 0)
	l.SetField(-2, "__index")
	l.Pop(1)
}

func checkConsiderations(l *lua.State) *considerationsUD {
	ud, ok := lua.CheckUserData(l, 1, considerationsTypeName).(*considerationsUD)
	if !ok {
		lua.Errorf(l, "expected considerations")
	}
	return ud
}

func checkConsider(l *lua.State) *considerUD {
	ud, ok := lua.CheckUserData(l, 1, considerTypeName).(*considerUD)
	if !ok {
		lua.Errorf(l, "expected consideration")
	}
	return ud
}

func considerationsForEach(l *lua.State) int {
	ud := checkConsiderations(l)
	lua.CheckType(l, 2, lua.TypeFunction)

	err := ud.cs.ForEach(func(c consider.Consider) error {
		l.PushValue(2)
		l.PushUserData(&considerUD{c: c})
		lua.SetMetaTableNamed(l, considerTypeName)
		return l.ProtectedCall(1, 0, 0)
	})
	if err != nil {
		lua.Errorf(l, "%s", err.Error())
	}
	return 0
}

func considerationsLen(l *lua.State) int {
	ud := checkConsiderations(l)
	l.PushInteger(ud.cs.Len())
	return 1
}

func considerIsAttack(l *lua.State) int {
	ud := checkConsider(l)
	l.PushBoolean(ud.c.Action.Kind == game.ActionAttack)
	return 1
}

func considerIsSpell(l *lua.State) int {
	ud := checkConsider(l)
	l.PushBoolean(ud.c.Action.Kind == game.ActionCast)
	return 1
}

func considerIsMove(l *lua.State) int {
	ud := checkConsider(l)
	l.PushBoolean(ud.c.Action.Kind == game.ActionMove)
	return 1
}

func considerDamageTotal(l *lua.State) int {
	ud := checkConsider(l)
	l.PushInteger(ud.c.DamageTotal())
	return 1
}

func considerDebuffTotal(l *lua.State) int {
	ud := checkConsider(l)
	l.PushInteger(ud.c.DebuffTotal())
	return 1
}

func considerMovement(l *lua.State) int {
	ud := checkConsider(l)
	x, y, ok := ud.c.Movement()
	if !ok {
		l.PushNil()
		return 1
	}
	l.PushInteger(x)
	l.PushInteger(y)
	return 2
}

func consolePrint(l *lua.State) int {
	h, ok := lua.CheckUserData(l, 1, consoleTypeName).(console.Handle)
	if !ok {
		lua.Errorf(l, "expected console")
	}
	text := lua.CheckString(l, 2)
	h.SendMessage(console.Message{Text: text, Kind: console.KindNormal})
	return 0
}

// LoadDir registers one Lua policy per *.lua file in dir, named by
// file base name. A missing directory is not an error; the built-in
// fallback covers everything.
func LoadDir(dir string, con console.Handle, set *Set) error {
	if dir == "" {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read scripts dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".lua") {
			continue
		}
		source, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return fmt.Errorf("read script %s: %w", entry.Name(), err)
		}
		name := strings.TrimSuffix(entry.Name(), ".lua")
		p, err := NewLua(name, string(source), con)
		if err != nil {
			return err
		}
		set.Register(name, p)
	}
	return nil
}
