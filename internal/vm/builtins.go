package vm

// Builtin dispatch: thin trampolines to math/IO/crypto/json/regex helpers
// (spec.md §2's "Builtin dispatch" component, §1's explicit Non-goal that
// their internal algorithms are not part of the core — the VM only owns
// the trampoline, not the hash/regex/json implementation behind it).
// Grounded on the teacher's pkg/vm/primitives.go send()-case trampolines,
// adapted from Go-native args/interface{} to tagged Values and from a
// Smalltalk selector string to an OP_CALL_BUILTIN id.

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"crypto/md5"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"regexp"
	"time"

	perrors "github.com/pkg/errors"

	"github.com/vexlang/vex/internal/object"
)

// Builtin is a single trampoline: given the VM (for heap allocation) and
// its arguments, produce a result value or a Go error. Per spec.md §7,
// I/O failures inside builtins never raise a Vex exception; they report a
// nil/false result. Only a genuinely malformed call (wrong arity/types)
// surfaces as a RuntimeError.
type Builtin func(m *Machine, args []object.Value) (object.Value, error)

// builtinTable maps a compiler-assigned builtin id (the high byte of
// OP_CALL_BUILTIN's operand) to its implementation and declared arity.
var builtinTable = []struct {
	name  string
	arity int
	fn    Builtin
}{
	{"len", 1, builtinLen},
	{"type", 1, builtinType},
	{"str", 1, builtinStr},
	{"sha256", 1, builtinSHA256},
	{"sha512", 1, builtinSHA512},
	{"md5", 1, builtinMD5},
	{"base64Encode", 1, builtinBase64Encode},
	{"base64Decode", 1, builtinBase64Decode},
	{"gzipCompress", 1, builtinGzipCompress},
	{"gzipDecompress", 1, builtinGzipDecompress},
	{"zipCompress", 1, builtinZipCompress},
	{"bytesToString", 1, builtinBytesToString},
	{"stringToBytes", 1, builtinStringToBytes},
	{"fileRead", 1, builtinFileRead},
	{"fileWrite", 2, builtinFileWrite},
	{"fileExists", 1, builtinFileExists},
	{"jsonParse", 1, builtinJSONParse},
	{"jsonGenerate", 1, builtinJSONGenerate},
	{"regexMatch", 2, builtinRegexMatch},
	{"regexReplace", 3, builtinRegexReplace},
	{"randomInt", 2, builtinRandomInt},
	{"randomFloat", 0, builtinRandomFloat},
	{"dateNow", 0, builtinDateNow},
	{"httpGet", 1, builtinHTTPGet},
}

// BuiltinIndexByName is used by the compiler to resolve a builtin
// identifier to the id packed into OP_CALL_BUILTIN's operand.
func BuiltinIndexByName(name string) (int, bool) {
	for i, b := range builtinTable {
		if b.name == name {
			return i, true
		}
	}
	return 0, false
}

func argString(args []object.Value, i int) (string, bool) {
	if i >= len(args) || !args[i].IsObj() {
		return "", false
	}
	s, ok := object.AsString(args[i].AsObj())
	if !ok {
		return "", false
	}
	return s.Value, true
}

// argBytes accepts either a Bytes object or a String object, so the
// builtins that use it (gzipDecompress, bytesToString) take raw byte data
// and text interchangeably; the compression and hashing builtins take
// strings only, through argString.
func argBytes(args []object.Value, i int) ([]byte, bool) {
	if i >= len(args) || !args[i].IsObj() {
		return nil, false
	}
	o := args[i].AsObj()
	if b, ok := object.AsBytes(o); ok {
		return b.Data, true
	}
	if s, ok := object.AsString(o); ok {
		return []byte(s.Value), true
	}
	return nil, false
}

func builtinLen(m *Machine, args []object.Value) (object.Value, error) {
	if len(args) != 1 || !args[0].IsObj() {
		return object.Nil, perrors.New("len: expects one sequence argument")
	}
	o := args[0].AsObj()
	if s, ok := object.AsString(o); ok {
		return object.Int(int32(len(s.Value))), nil
	}
	if a, ok := object.AsArray(o); ok {
		return object.Int(int32(len(a.Elements))), nil
	}
	if d, ok := object.AsDict(o); ok {
		return object.Int(int32(d.Len())), nil
	}
	if b, ok := object.AsBytes(o); ok {
		return object.Int(int32(len(b.Data))), nil
	}
	return object.Nil, perrors.Errorf("len: unsupported type %s", object.TypeName(o))
}

func builtinType(m *Machine, args []object.Value) (object.Value, error) {
	if len(args) != 1 {
		return object.Nil, perrors.New("type: expects one argument")
	}
	return object.Obj(&m.heap.NewString(args[0].TypeName()).Obj), nil
}

func builtinStr(m *Machine, args []object.Value) (object.Value, error) {
	if len(args) != 1 {
		return object.Nil, perrors.New("str: expects one argument")
	}
	return object.Obj(&m.heap.NewString(args[0].String()).Obj), nil
}

func builtinSHA256(m *Machine, args []object.Value) (object.Value, error) {
	s, ok := argString(args, 0)
	if !ok {
		return object.Nil, perrors.New("sha256: expects a string")
	}
	sum := sha256.Sum256([]byte(s))
	return object.Obj(&m.heap.NewString(fmt.Sprintf("%x", sum)).Obj), nil
}

func builtinSHA512(m *Machine, args []object.Value) (object.Value, error) {
	s, ok := argString(args, 0)
	if !ok {
		return object.Nil, perrors.New("sha512: expects a string")
	}
	sum := sha512.Sum512([]byte(s))
	return object.Obj(&m.heap.NewString(fmt.Sprintf("%x", sum)).Obj), nil
}

func builtinMD5(m *Machine, args []object.Value) (object.Value, error) {
	s, ok := argString(args, 0)
	if !ok {
		return object.Nil, perrors.New("md5: expects a string")
	}
	sum := md5.Sum([]byte(s))
	return object.Obj(&m.heap.NewString(fmt.Sprintf("%x", sum)).Obj), nil
}

func builtinBase64Encode(m *Machine, args []object.Value) (object.Value, error) {
	s, ok := argString(args, 0)
	if !ok {
		return object.Nil, perrors.New("base64Encode: expects a string")
	}
	return object.Obj(&m.heap.NewString(base64.StdEncoding.EncodeToString([]byte(s))).Obj), nil
}

// builtinBase64Decode: a malformed payload is an I/O-class failure per
// spec.md §7, so it returns nil rather than raising.
func builtinBase64Decode(m *Machine, args []object.Value) (object.Value, error) {
	s, ok := argString(args, 0)
	if !ok {
		return object.Nil, perrors.New("base64Decode: expects a string")
	}
	decoded, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return object.Nil, nil
	}
	return object.Obj(&m.heap.NewString(string(decoded)).Obj), nil
}

// builtinGzipCompress returns a Bytes object holding the raw compressed
// stream; base64Encode takes only strings, so callers that want a
// transport-safe string pass the result through bytesToString first.
func builtinGzipCompress(m *Machine, args []object.Value) (object.Value, error) {
	s, ok := argString(args, 0)
	if !ok {
		return object.Nil, perrors.New("gzipCompress: expects a string")
	}
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write([]byte(s)); err != nil {
		return object.Nil, nil
	}
	if err := w.Close(); err != nil {
		return object.Nil, nil
	}
	return object.Obj(&m.heap.NewBytes(buf.Bytes()).Obj), nil
}

func builtinGzipDecompress(m *Machine, args []object.Value) (object.Value, error) {
	data, ok := argBytes(args, 0)
	if !ok {
		return object.Nil, perrors.New("gzipDecompress: expects bytes or a string")
	}
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return object.Nil, nil
	}
	defer r.Close()
	content, err := io.ReadAll(r)
	if err != nil {
		return object.Nil, nil
	}
	return object.Obj(&m.heap.NewString(string(content)).Obj), nil
}

func builtinZipCompress(m *Machine, args []object.Value) (object.Value, error) {
	s, ok := argString(args, 0)
	if !ok {
		return object.Nil, perrors.New("zipCompress: expects a string")
	}
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("data")
	if err != nil {
		return object.Nil, nil
	}
	if _, err := f.Write([]byte(s)); err != nil {
		return object.Nil, nil
	}
	if err := w.Close(); err != nil {
		return object.Nil, nil
	}
	return object.Obj(&m.heap.NewBytes(buf.Bytes()).Obj), nil
}

// builtinBytesToString and builtinStringToBytes convert between the two
// sequence representations; Vex scripts reach for these when a builtin like
// gzipCompress hands back raw Bytes that needs to flow into string-only code
// (concatenation, regex, print).
func builtinBytesToString(m *Machine, args []object.Value) (object.Value, error) {
	data, ok := argBytes(args, 0)
	if !ok {
		return object.Nil, perrors.New("bytesToString: expects bytes or a string")
	}
	return object.Obj(&m.heap.NewString(string(data)).Obj), nil
}

func builtinStringToBytes(m *Machine, args []object.Value) (object.Value, error) {
	s, ok := argString(args, 0)
	if !ok {
		return object.Nil, perrors.New("stringToBytes: expects a string")
	}
	return object.Obj(&m.heap.NewBytes([]byte(s)).Obj), nil
}

func builtinFileRead(m *Machine, args []object.Value) (object.Value, error) {
	path, ok := argString(args, 0)
	if !ok {
		return object.Nil, perrors.New("fileRead: expects a path string")
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return object.Nil, nil
	}
	return object.Obj(&m.heap.NewString(string(content)).Obj), nil
}

func builtinFileWrite(m *Machine, args []object.Value) (object.Value, error) {
	path, ok1 := argString(args, 0)
	content, ok2 := argString(args, 1)
	if !ok1 || !ok2 {
		return object.Nil, perrors.New("fileWrite: expects (path, content) strings")
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return object.Bool(false), nil
	}
	return object.Bool(true), nil
}

func builtinFileExists(m *Machine, args []object.Value) (object.Value, error) {
	path, ok := argString(args, 0)
	if !ok {
		return object.Nil, perrors.New("fileExists: expects a path string")
	}
	_, err := os.Stat(path)
	return object.Bool(err == nil), nil
}

func builtinJSONParse(m *Machine, args []object.Value) (object.Value, error) {
	s, ok := argString(args, 0)
	if !ok {
		return object.Nil, perrors.New("jsonParse: expects a string")
	}
	var decoded interface{}
	if err := json.Unmarshal([]byte(s), &decoded); err != nil {
		return object.Nil, nil
	}
	return jsonToValue(m, decoded), nil
}

func jsonToValue(m *Machine, v interface{}) object.Value {
	switch t := v.(type) {
	case nil:
		return object.Nil
	case bool:
		return object.Bool(t)
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < math.MaxInt32 {
			return object.Int(int32(t))
		}
		return object.Float(t)
	case string:
		return object.Obj(&m.heap.NewString(t).Obj)
	case []interface{}:
		arr := m.heap.NewArray(nil)
		for _, e := range t {
			arr.Push(jsonToValue(m, e))
		}
		return object.Obj(&arr.Obj)
	case map[string]interface{}:
		d := m.heap.NewDict()
		for k, e := range t {
			d.Set(k, jsonToValue(m, e))
		}
		return object.Obj(&d.Obj)
	default:
		return object.Nil
	}
}

func valueToJSON(v object.Value) interface{} {
	if !v.IsObj() {
		switch {
		case v.IsNil():
			return nil
		case v.IsBool():
			return v.AsBool()
		case v.IsInt():
			return v.AsInt()
		case v.IsFloat():
			return v.AsFloat()
		}
	}
	o := v.AsObj()
	if s, ok := object.AsString(o); ok {
		return s.Value
	}
	if a, ok := object.AsArray(o); ok {
		out := make([]interface{}, len(a.Elements))
		for i, e := range a.Elements {
			out[i] = valueToJSON(e)
		}
		return out
	}
	if d, ok := object.AsDict(o); ok {
		out := make(map[string]interface{})
		d.Each(func(k string, val object.Value) { out[k] = valueToJSON(val) })
		return out
	}
	return v.String()
}

func builtinJSONGenerate(m *Machine, args []object.Value) (object.Value, error) {
	if len(args) != 1 {
		return object.Nil, perrors.New("jsonGenerate: expects one argument")
	}
	data, err := json.Marshal(valueToJSON(args[0]))
	if err != nil {
		return object.Nil, nil
	}
	return object.Obj(&m.heap.NewString(string(data)).Obj), nil
}

func builtinRegexMatch(m *Machine, args []object.Value) (object.Value, error) {
	pattern, ok1 := argString(args, 0)
	text, ok2 := argString(args, 1)
	if !ok1 || !ok2 {
		return object.Nil, perrors.New("regexMatch: expects (pattern, text) strings")
	}
	matched, err := regexp.MatchString(pattern, text)
	if err != nil {
		return object.Bool(false), nil
	}
	return object.Bool(matched), nil
}

func builtinRegexReplace(m *Machine, args []object.Value) (object.Value, error) {
	pattern, ok1 := argString(args, 0)
	text, ok2 := argString(args, 1)
	repl, ok3 := argString(args, 2)
	if !ok1 || !ok2 || !ok3 {
		return object.Nil, perrors.New("regexReplace: expects (pattern, text, replacement) strings")
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return object.Obj(&m.heap.NewString(text).Obj), nil
	}
	return object.Obj(&m.heap.NewString(re.ReplaceAllString(text, repl)).Obj), nil
}

func builtinRandomInt(m *Machine, args []object.Value) (object.Value, error) {
	if len(args) != 2 || !args[0].IsInt() || !args[1].IsInt() {
		return object.Nil, perrors.New("randomInt: expects (min, max) integers")
	}
	lo, hi := args[0].AsInt(), args[1].AsInt()
	if lo > hi {
		return object.Nil, perrors.New("randomInt: min must be <= max")
	}
	var b [4]byte
	if _, err := io.ReadFull(rand.Reader, b[:]); err != nil {
		return object.Int(lo), nil
	}
	span := uint32(hi-lo) + 1
	n := (uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])) % span
	return object.Int(lo + int32(n)), nil
}

func builtinRandomFloat(m *Machine, args []object.Value) (object.Value, error) {
	var b [8]byte
	if _, err := io.ReadFull(rand.Reader, b[:]); err != nil {
		return object.Float(0), nil
	}
	n := uint64(b[0])<<56 | uint64(b[1])<<48 | uint64(b[2])<<40 | uint64(b[3])<<32 |
		uint64(b[4])<<24 | uint64(b[5])<<16 | uint64(b[6])<<8 | uint64(b[7])
	return object.Float(float64(n>>11) / float64(uint64(1)<<53)), nil
}

func builtinDateNow(m *Machine, args []object.Value) (object.Value, error) {
	return object.Int(int32(time.Now().Unix())), nil
}

// builtinHTTPGet is the only network-touching builtin, retained from the
// teacher's httpGet for parity; per spec.md §7 a transport failure never
// raises, it yields nil.
func builtinHTTPGet(m *Machine, args []object.Value) (object.Value, error) {
	url, ok := argString(args, 0)
	if !ok {
		return object.Nil, perrors.New("httpGet: expects a URL string")
	}
	resp, err := http.Get(url)
	if err != nil {
		return object.Nil, nil
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return object.Nil, nil
	}
	return object.Obj(&m.heap.NewString(string(body)).Obj), nil
}
