package native

// WebAssembly binary encoding: a minimal module builder covering the
// sections the lowering emits (types, imports, functions, exports, code).
// The generated module carries no linear memory; all state lives on the
// host side of the runtime-helper imports.

const (
	secType     = 1
	secImport   = 2
	secFunction = 3
	secExport   = 7
	secCode     = 10

	valI32 = 0x7f

	extFunc = 0x00

	typeFunc = 0x60

	// opcodes used by the lowering
	opBlock    = 0x02
	opIf       = 0x04
	opElse     = 0x05
	opEnd      = 0x0b
	opBr       = 0x0c
	opBrIf     = 0x0d
	opCall     = 0x10
	opI32Const = 0x41

	// empty block type (no result)
	blockVoid = 0x40
)

// funcType describes a function signature.
type funcType struct {
	params  []byte
	results []byte
}

// funcImport describes an imported host function.
type funcImport struct {
	module  string
	name    string
	typeIdx int
}

// funcExport describes an exported function.
type funcExport struct {
	name string
	idx  uint32
}

// module accumulates a WebAssembly binary.
type module struct {
	types   []funcType
	imports []funcImport
	funcs   []int // type index per defined function
	exports []funcExport
	codes   [][]byte // encoded bodies, locals included
}

// typeIdx registers a function type, deduplicating.
func (m *module) typeIdx(params, results []byte) int {
	for i, t := range m.types {
		if bytesEqual(t.params, params) && bytesEqual(t.results, results) {
			return i
		}
	}
	m.types = append(m.types, funcType{params: params, results: results})
	return len(m.types) - 1
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// addImport registers a host function import and returns its function
// index. All imports must be added before any defined function.
func (m *module) addImport(mod, name string, params, results []byte) int {
	tidx := m.typeIdx(params, results)
	m.imports = append(m.imports, funcImport{module: mod, name: name, typeIdx: tidx})
	return len(m.imports) - 1
}

// addFunc registers a defined function (body supplied via addCode) and
// returns its function index.
func (m *module) addFunc(params, results []byte) int {
	tidx := m.typeIdx(params, results)
	m.funcs = append(m.funcs, tidx)
	return len(m.imports) + len(m.funcs) - 1
}

// addCode appends an encoded function body; order must match addFunc.
func (m *module) addCode(body []byte) {
	full := make([]byte, 0, len(body)+2)
	full = appendULEB128(full, 0) // no locals
	full = append(full, body...)
	full = append(full, opEnd)
	m.codes = append(m.codes, full)
}

// addExport exports the function at idx under name.
func (m *module) addExport(name string, idx uint32) {
	m.exports = append(m.exports, funcExport{name: name, idx: idx})
}

// encode produces the complete .wasm binary.
func (m *module) encode() []byte {
	out := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00} // \0asm v1

	var buf []byte
	buf = appendULEB128(buf, uint32(len(m.types)))
	for _, t := range m.types {
		buf = append(buf, typeFunc)
		buf = appendULEB128(buf, uint32(len(t.params)))
		buf = append(buf, t.params...)
		buf = appendULEB128(buf, uint32(len(t.results)))
		buf = append(buf, t.results...)
	}
	out = appendSection(out, secType, buf)

	if len(m.imports) > 0 {
		buf = buf[:0]
		buf = appendULEB128(buf, uint32(len(m.imports)))
		for _, imp := range m.imports {
			buf = appendULEB128(buf, uint32(len(imp.module)))
			buf = append(buf, imp.module...)
			buf = appendULEB128(buf, uint32(len(imp.name)))
			buf = append(buf, imp.name...)
			buf = append(buf, extFunc)
			buf = appendULEB128(buf, uint32(imp.typeIdx))
		}
		out = appendSection(out, secImport, buf)
	}

	buf = buf[:0]
	buf = appendULEB128(buf, uint32(len(m.funcs)))
	for _, tidx := range m.funcs {
		buf = appendULEB128(buf, uint32(tidx))
	}
	out = appendSection(out, secFunction, buf)

	buf = buf[:0]
	buf = appendULEB128(buf, uint32(len(m.exports)))
	for _, exp := range m.exports {
		buf = appendULEB128(buf, uint32(len(exp.name)))
		buf = append(buf, exp.name...)
		buf = append(buf, extFunc)
		buf = appendULEB128(buf, exp.idx)
	}
	out = appendSection(out, secExport, buf)

	buf = buf[:0]
	buf = appendULEB128(buf, uint32(len(m.codes)))
	for _, body := range m.codes {
		buf = appendULEB128(buf, uint32(len(body)))
		buf = append(buf, body...)
	}
	out = appendSection(out, secCode, buf)

	return out
}

func appendSection(out []byte, id byte, payload []byte) []byte {
	out = append(out, id)
	out = appendULEB128(out, uint32(len(payload)))
	return append(out, payload...)
}

func appendULEB128(buf []byte, v uint32) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		buf = append(buf, b)
		if v == 0 {
			return buf
		}
	}
}
