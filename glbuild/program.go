package glbuild

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"slices"
)

// Program is a procedural shader: an ordered list of function definitions plus an entry point.
// Programs are immutable; methods that change a program return a new one.
type Program struct {
	defs []FunctionDef
	main Node
}

// NewProgram creates a program with entry point main and definitions defs.
// It returns an error if main is nil or if definition names are not pairwise distinct.
// The program keeps deep copies of main and defs.
func NewProgram(main Node, defs ...FunctionDef) (Program, error) {
	if main == nil {
		return Program{}, errors.New("nil program main")
	}
	names := make(map[string]struct{}, len(defs)+1)
	if mainDef, ok := main.(FunctionDef); ok {
		names[mainDef.Name] = struct{}{}
	}
	for i, def := range defs {
		if def.Name == "" {
			return Program{}, fmt.Errorf("definition %d has empty name", i)
		}
		if _, dup := names[def.Name]; dup {
			return Program{}, fmt.Errorf("duplicate definition of %q", def.Name)
		}
		names[def.Name] = struct{}{}
	}
	return Program{defs: cloneDefs(defs), main: cloneNode(main)}, nil
}

// MustProgram is like [NewProgram] but panics on error.
func MustProgram(main Node, defs ...FunctionDef) Program {
	p, err := NewProgram(main, defs...)
	if err != nil {
		panic(err)
	}
	return p
}

// Main returns a copy of the program's entry point.
func (p Program) Main() Node { return cloneNode(p.main) }

// Defs returns a copy of the program's function definitions in declaration order.
func (p Program) Defs() []FunctionDef { return cloneDefs(p.defs) }

// Def returns the function definition named name. The program's main is also
// searched if it is a function definition.
func (p Program) Def(name string) (FunctionDef, bool) {
	for _, def := range p.defs {
		if def.Name == name {
			return cloneDef(def), true
		}
	}
	if def, ok := p.main.(FunctionDef); ok && def.Name == name {
		return cloneDef(def), true
	}
	return FunctionDef{}, false
}

// Env returns the name of the first environment block found in main, depth first.
// It returns an empty string if main contains no environment block.
func (p Program) Env() (env string) {
	Walk(p.main, func(n Node) bool {
		if blk, ok := n.(Block); ok && blk.Name != "" {
			env = blk.Name
			return false
		}
		return true
	})
	return env
}

// Render returns the GLSL source of the program: all definitions in order followed by main,
// newline separated and with surrounding whitespace trimmed.
//
// References to members of the program's environment block (see [Program.Env]) are
// resolved during rendering: env.member is emitted as member and bare references to env are omitted.
// No version directive or other prologue is emitted.
func (p Program) Render() string {
	return string(p.AppendRender(nil))
}

// AppendRender appends the result of [Program.Render] to dst and returns the result.
func (p Program) AppendRender(dst []byte) []byte {
	if p.main == nil {
		panic("render of zero value Program")
	}
	r := renderer{env: p.Env()}
	start := len(dst)
	for _, def := range p.defs {
		dst = r.appendTop(dst, def)
		dst = append(dst, '\n')
	}
	dst = r.appendTop(dst, p.main)
	trimmed := bytes.TrimSpace(dst[start:])
	n := copy(dst[start:], trimmed)
	return dst[:start+n]
}

// Find returns a copy of the first node that satisfies pred. Definitions are searched in order before main, each depth first.
func (p Program) Find(pred func(Node) bool) (found Node, ok bool) {
	p.walk(func(n Node) bool {
		if pred(n) {
			found, ok = cloneNode(n), true
			return false
		}
		return true
	})
	return found, ok
}

// Exists reports whether any node of the program satisfies pred. The search stops at the first match.
func (p Program) Exists(pred func(Node) bool) bool {
	_, ok := p.Find(pred)
	return ok
}

func (p Program) walk(fn func(Node) bool) bool {
	for _, def := range p.defs {
		if !Walk(def, fn) {
			return false
		}
	}
	return Walk(p.main, fn)
}

// EnvMembers returns the distinct members of the environment block referenced anywhere
// in the program, in order of first use. Useful for laying out uniforms of the environment.
func (p Program) EnvMembers() []string {
	env := p.Env()
	if env == "" {
		return nil
	}
	var members []string
	isEnv := func(x Node) bool {
		id, ok := x.(Identifier)
		return ok && id.Name == env
	}
	p.walk(func(n Node) bool {
		var field string
		switch n := n.(type) {
		case Member:
			if isEnv(n.X) {
				field = n.Field
			}
		case Swizzle:
			if isEnv(n.X) {
				field = n.Pattern.String()
			}
		}
		if field != "" && !slices.Contains(members, field) {
			members = append(members, field)
		}
		return true
	})
	return members
}

// Prune returns a copy of the program without definitions that can not be reached from main through calls.
// Render never prunes on its own; unused definitions are emitted unless Prune is called.
func (p Program) Prune() Program {
	return Program{defs: Reachable(p.defs, p.main), main: p.main}
}

// Include returns a new program with defs declared before the program's own definitions.
// Definitions identical to one already included are skipped; a distinct definition
// with an already taken name is an error.
func (p Program) Include(defs ...FunctionDef) (Program, error) {
	merged, err := MergeDefs(defs, p.defs)
	if err != nil {
		return Program{}, err
	}
	return NewProgram(p.main, merged...)
}

// Reachable returns the definitions of defs transitively called from roots, in the order they appear in defs.
func Reachable(defs []FunctionDef, roots ...Node) []FunctionDef {
	byName := make(map[string]int, len(defs))
	for i, def := range defs {
		byName[def.Name] = i
	}
	used := make([]bool, len(defs))
	pending := slices.Clone(roots)
	for len(pending) > 0 {
		n := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		Walk(n, func(n Node) bool {
			call, ok := n.(Call)
			if !ok {
				return true
			}
			if i, ok := byName[call.Name]; ok && !used[i] {
				used[i] = true
				pending = append(pending, defs[i])
			}
			return true
		})
	}
	var reached []FunctionDef
	for i, def := range defs {
		if used[i] {
			reached = append(reached, def)
		}
	}
	return reached
}

// MergeDefs concatenates the definition lists in order, skipping definitions identical
// in name and source to one already merged. Two distinct definitions sharing a name is an error.
func MergeDefs(lists ...[]FunctionDef) ([]FunctionDef, error) {
	var merged []FunctionDef
	var scratch []byte
	// names maps definition name hashes to body hashes for checking duplicates.
	names := make(map[uint64]uint64)
	for _, defs := range lists {
		for _, def := range defs {
			if def.Name == "" {
				return nil, errors.New("definition with empty name")
			}
			scratch = AppendNode(scratch[:0], def)
			nameHash := hash([]byte(def.Name), 0)
			bodyHash := hash(scratch, nameHash) // Body hash mixes name as well.
			gotBodyHash, nameConflict := names[nameHash]
			if nameConflict {
				if bodyHash == gotBodyHash {
					continue // Identical definition already merged.
				}
				return nil, fmt.Errorf("conflicting definitions of %q:\n%s", def.Name, scratch)
			}
			names[nameHash] = bodyHash
			merged = append(merged, def)
		}
	}
	return merged, nil
}

func hash(b []byte, in uint64) uint64 {
	x := in
	for len(b) >= 8 {
		x ^= binary.LittleEndian.Uint64(b)
		x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
		x = (x ^ (x >> 27)) * 0x94d049bb133111eb
		x ^= x >> 31
		b = b[8:]
	}
	if len(b) > 0 {
		var buf [8]byte
		copy(buf[:], b)
		x ^= binary.LittleEndian.Uint64(buf[:])
		x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
		x = (x ^ (x >> 27)) * 0x94d049bb133111eb
		x ^= x >> 31
	}
	return x
}
