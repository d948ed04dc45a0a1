// Package classifier decides whether an arbitrary Go value is a JSON value:
// null, a boolean, a number, a string, an array of JSON values or a
// string-keyed object of JSON values, at any nesting depth.
package classifier

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"regexp"
	"sort"
	"strconv"

	"github.com/mcncl/isjson/internal/errors"
	"github.com/mcncl/isjson/internal/models"
	"google.golang.org/protobuf/types/known/structpb"
)

// numberLiteral is the JSON number grammar from RFC 8259.
var numberLiteral = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

// Options tunes classification. The zero value gives the strict behavior.
type Options struct {
	// AllowNonFinite accepts NaN and infinities as numbers.
	AllowNonFinite bool
	// MaxDepth rejects values nested deeper than this. 0 means unlimited.
	MaxDepth int
	// MaxErrors bounds how many violations CheckAll collects. 0 means all.
	MaxErrors int
}

// Classifier checks values against the JSON value shape. It holds no mutable
// state and may be shared between goroutines.
type Classifier struct {
	opts Options
}

// NewClassifier creates a Classifier with strict default options.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// NewClassifierWithOptions creates a Classifier with custom options.
func NewClassifierWithOptions(opts Options) *Classifier {
	return &Classifier{opts: opts}
}

var defaultClassifier = NewClassifier()

// IsJSON reports whether v is a JSON value using the default options.
func IsJSON(v any) (bool, error) {
	return defaultClassifier.IsJSON(v)
}

// Check returns nil if v is a JSON value using the default options.
func Check(v any) error {
	return defaultClassifier.Check(v)
}

// IsJSON reports whether v is a JSON value. Rejected kinds give (false, nil);
// a cyclic input gives (false, *errors.CyclicStructureError). The walk stops at
// the first violation in key order, so a cycle is reported only when it is
// reached before any rejected kind.
func (c *Classifier) IsJSON(v any) (bool, error) {
	err := c.Check(v)
	if err == nil {
		return true, nil
	}
	var cycleErr *errors.CyclicStructureError
	if stderrors.As(err, &cycleErr) {
		return false, err
	}
	return false, nil
}

// Check returns nil if v is a JSON value, otherwise the first
// *errors.ValidationError found (keys are visited in sorted order) or an
// *errors.CyclicStructureError.
func (c *Classifier) Check(v any) error {
	w := c.newWalker(1, false)
	w.walk(v, nil, 0)
	if len(w.errs) > 0 {
		return w.errs[0]
	}
	return nil
}

// CheckAll returns every violation in v, up to Options.MaxErrors. A cycle
// stops the walk.
func (c *Classifier) CheckAll(v any) []error {
	w := c.newWalker(c.opts.MaxErrors, false)
	w.walk(v, nil, 0)
	return w.errs
}

// Convert checks v and builds the equivalent models.Value.
func (c *Classifier) Convert(v any) (models.Value, error) {
	w := c.newWalker(1, true)
	out := w.walk(v, nil, 0)
	if len(w.errs) > 0 {
		return models.Value{}, w.errs[0]
	}
	return out, nil
}

// visitKey identifies a container on the current traversal path.
type visitKey struct {
	ptr uintptr
	len int
	typ reflect.Type
}

type walker struct {
	opts    Options
	limit   int
	build   bool
	errs    []error
	stopped bool
	onPath  map[visitKey]struct{}
}

func (c *Classifier) newWalker(limit int, build bool) *walker {
	return &walker{
		opts:   c.opts,
		limit:  limit,
		build:  build,
		onPath: make(map[visitKey]struct{}),
	}
}

func (w *walker) reject(path models.Path, reason errors.Reason, kind, message string) {
	w.errs = append(w.errs, &errors.ValidationError{
		Path:    path.String(),
		Reason:  reason,
		Kind:    kind,
		Message: message,
	})
	if w.limit > 0 && len(w.errs) >= w.limit {
		w.stopped = true
	}
}

func (w *walker) unsupported(path models.Path, kind string, typ string) {
	w.reject(path, errors.ReasonUnsupportedValueKind, kind,
		fmt.Sprintf("%s values are not valid JSON (got %s)", kind, typ))
}

// enter marks a container as being on the current path. It reports false and
// records a cycle if the container is already there.
func (w *walker) enter(key visitKey, path models.Path) bool {
	if _, ok := w.onPath[key]; ok {
		w.errs = append(w.errs, &errors.CyclicStructureError{Path: path.String(), Type: key.typ.String()})
		w.stopped = true
		return false
	}
	w.onPath[key] = struct{}{}
	return true
}

func (w *walker) leave(key visitKey) {
	delete(w.onPath, key)
}

func (w *walker) walk(v any, path models.Path, depth int) models.Value {
	if w.stopped {
		return models.Value{}
	}
	if w.opts.MaxDepth > 0 && depth > w.opts.MaxDepth {
		w.reject(path, errors.ReasonDepthExceeded, "",
			fmt.Sprintf("nesting depth %d exceeds the limit of %d", depth, w.opts.MaxDepth))
		return models.Value{}
	}
	if models.IsUndefined(v) {
		w.unsupported(path, "undefined", "undefined")
		return models.Value{}
	}

	switch x := v.(type) {
	case nil:
		return models.NullValue()
	case models.Value:
		return w.walkValue(x, path, depth)
	case json.Number:
		return w.walkNumberLiteral(string(x), path)
	case json.RawMessage:
		return w.walkRaw(x, path, depth)
	case *structpb.Value:
		return w.walkProtoValue(x, path, depth)
	case *structpb.Struct:
		return w.walkProtoStruct(x, path, depth)
	case *structpb.ListValue:
		return w.walkProtoList(x, path, depth)
	case big.Int, *big.Int:
		w.unsupported(path, "bigint", fmt.Sprintf("%T", v))
		return models.Value{}
	case big.Float, *big.Float:
		w.unsupported(path, "bigfloat", fmt.Sprintf("%T", v))
		return models.Value{}
	case big.Rat, *big.Rat:
		w.unsupported(path, "bigrat", fmt.Sprintf("%T", v))
		return models.Value{}
	case reflect.Type:
		w.unsupported(path, "class", fmt.Sprintf("type %s", x))
		return models.Value{}
	}

	return w.walkReflect(reflect.ValueOf(v), path, depth)
}

func (w *walker) walkReflect(rv reflect.Value, path models.Path, depth int) models.Value {
	switch rv.Kind() {
	case reflect.Invalid:
		return models.NullValue()
	case reflect.Bool:
		return models.BoolValue(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := rv.Int()
		return models.NumberLiteral(strconv.FormatInt(n, 10), float64(n))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n := rv.Uint()
		return models.NumberLiteral(strconv.FormatUint(n, 10), float64(n))
	case reflect.Float32, reflect.Float64:
		return w.walkFloat(rv.Float(), path)
	case reflect.String:
		return models.StringValue(rv.String())
	case reflect.Pointer:
		return w.walkPointer(rv, path, depth)
	case reflect.Interface:
		if rv.IsNil() {
			return models.NullValue()
		}
		return w.walk(rv.Elem().Interface(), path, depth)
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			w.unsupported(path, "bytes", rv.Type().String())
			return models.Value{}
		}
		return w.walkSequence(rv, path, depth, true)
	case reflect.Array:
		return w.walkSequence(rv, path, depth, false)
	case reflect.Map:
		return w.walkMap(rv, path, depth)
	case reflect.Func:
		w.unsupported(path, "function", rv.Type().String())
	case reflect.Chan:
		w.unsupported(path, "channel", rv.Type().String())
	case reflect.Complex64, reflect.Complex128:
		w.unsupported(path, "complex", rv.Type().String())
	case reflect.Uintptr:
		w.unsupported(path, "uintptr", rv.Type().String())
	case reflect.UnsafePointer:
		w.unsupported(path, "unsafe pointer", rv.Type().String())
	case reflect.Struct:
		w.unsupported(path, "struct", rv.Type().String())
	default:
		w.unsupported(path, rv.Kind().String(), rv.Type().String())
	}
	return models.Value{}
}

func (w *walker) walkFloat(f float64, path models.Path) models.Value {
	if (math.IsNaN(f) || math.IsInf(f, 0)) && !w.opts.AllowNonFinite {
		w.reject(path, errors.ReasonNonFiniteNumber, "number",
			fmt.Sprintf("%v is not a finite number", f))
		return models.Value{}
	}
	return models.NumberValue(f)
}

func (w *walker) walkNumberLiteral(lit string, path models.Path) models.Value {
	if !numberLiteral.MatchString(lit) {
		w.reject(path, errors.ReasonUnsupportedValueKind, "number",
			fmt.Sprintf("%q is not a well-formed number literal", lit))
		return models.Value{}
	}
	// Out-of-range literals are still valid JSON text; ParseFloat returns
	// the nearest infinity for them.
	f, _ := strconv.ParseFloat(lit, 64)
	return models.NumberLiteral(lit, f)
}

func (w *walker) walkRaw(raw json.RawMessage, path models.Path, depth int) models.Value {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil || dec.More() {
		w.unsupported(path, "raw message", "malformed JSON text")
		return models.Value{}
	}
	return w.walk(v, path, depth)
}

func (w *walker) walkPointer(rv reflect.Value, path models.Path, depth int) models.Value {
	if rv.IsNil() {
		return models.NullValue()
	}
	key := visitKey{ptr: rv.Pointer(), typ: rv.Type()}
	if !w.enter(key, path) {
		return models.Value{}
	}
	defer w.leave(key)
	return w.walk(rv.Elem().Interface(), path, depth)
}

func (w *walker) walkSequence(rv reflect.Value, path models.Path, depth int, track bool) models.Value {
	n := rv.Len()
	// Zero-length slices may share an address without sharing elements.
	if track && n > 0 {
		key := visitKey{ptr: rv.Pointer(), len: n, typ: rv.Type()}
		if !w.enter(key, path) {
			return models.Value{}
		}
		defer w.leave(key)
	}

	var elems []models.Value
	if w.build {
		elems = make([]models.Value, n)
	}
	for i := 0; i < n && !w.stopped; i++ {
		e := w.walk(rv.Index(i).Interface(), path.Index(i), depth+1)
		if w.build {
			elems[i] = e
		}
	}
	if !w.build {
		return models.Value{}
	}
	return models.ArrayValue(elems...)
}

func (w *walker) walkMap(rv reflect.Value, path models.Path, depth int) models.Value {
	if !rv.IsNil() && rv.Len() > 0 {
		key := visitKey{ptr: rv.Pointer(), typ: rv.Type()}
		if !w.enter(key, path) {
			return models.Value{}
		}
		defer w.leave(key)
	}

	type entry struct {
		name string
		key  reflect.Value
	}
	var entries []entry
	var badKeys []reflect.Value
	iter := rv.MapRange()
	for iter.Next() {
		k := iter.Key()
		if k.Kind() == reflect.Interface {
			k = k.Elem()
		}
		if !k.IsValid() || k.Kind() != reflect.String {
			badKeys = append(badKeys, iter.Key())
			continue
		}
		entries = append(entries, entry{name: k.String(), key: iter.Key()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })
	sort.Slice(badKeys, func(i, j int) bool {
		return fmt.Sprint(badKeys[i].Interface()) < fmt.Sprint(badKeys[j].Interface())
	})

	for _, k := range badKeys {
		if w.stopped {
			return models.Value{}
		}
		w.reject(path, errors.ReasonNonStringKey, keyKind(k),
			fmt.Sprintf("object key %v (%s) is not a string", k.Interface(), keyKind(k)))
	}

	var fields map[string]models.Value
	if w.build {
		fields = make(map[string]models.Value, len(entries))
	}
	for _, e := range entries {
		if w.stopped {
			break
		}
		f := w.walk(rv.MapIndex(e.key).Interface(), path.Key(e.name), depth+1)
		if w.build {
			fields[e.name] = f
		}
	}
	if !w.build {
		return models.Value{}
	}
	return models.ObjectValue(fields)
}

func keyKind(k reflect.Value) string {
	if k.Kind() == reflect.Interface {
		if k.IsNil() {
			return "nil"
		}
		k = k.Elem()
	}
	return k.Type().String()
}

// walkValue re-checks a models.Value; constructors cannot produce cycles but
// numbers may be non-finite and nesting may exceed the depth limit. A literal
// past the float64 range is judged by its text, as walkNumberLiteral does.
func (w *walker) walkValue(v models.Value, path models.Path, depth int) models.Value {
	switch v.Kind() {
	case models.Invalid:
		w.unsupported(path, "undefined", "zero models.Value")
	case models.Number:
		if v.Overflows() {
			w.walkNumberLiteral(v.Literal(), path)
			break
		}
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			w.walkFloat(f, path)
		}
	case models.Array:
		for i := 0; i < v.Len(); i++ {
			w.walk(v.Index(i), path.Index(i), depth+1)
		}
	case models.Object:
		for _, k := range v.Keys() {
			f, _ := v.Get(k)
			w.walk(f, path.Key(k), depth+1)
		}
	}
	return v
}

func (w *walker) walkProtoValue(pv *structpb.Value, path models.Path, depth int) models.Value {
	if pv == nil {
		return models.NullValue()
	}
	switch k := pv.GetKind().(type) {
	case *structpb.Value_NullValue:
		return models.NullValue()
	case *structpb.Value_BoolValue:
		return models.BoolValue(k.BoolValue)
	case *structpb.Value_NumberValue:
		return w.walkFloat(k.NumberValue, path)
	case *structpb.Value_StringValue:
		return models.StringValue(k.StringValue)
	case *structpb.Value_StructValue:
		return w.walkProtoStruct(k.StructValue, path, depth)
	case *structpb.Value_ListValue:
		return w.walkProtoList(k.ListValue, path, depth)
	default:
		w.unsupported(path, "undefined", "google.protobuf.Value with no kind set")
		return models.Value{}
	}
}

func (w *walker) walkProtoStruct(st *structpb.Struct, path models.Path, depth int) models.Value {
	if st == nil {
		return models.ObjectValue(nil)
	}
	key := visitKey{ptr: reflect.ValueOf(st).Pointer(), typ: reflect.TypeOf(st)}
	if !w.enter(key, path) {
		return models.Value{}
	}
	defer w.leave(key)

	names := make([]string, 0, len(st.GetFields()))
	for name := range st.GetFields() {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make(map[string]models.Value, len(names))
	for _, name := range names {
		if w.stopped {
			break
		}
		fields[name] = w.walk(st.GetFields()[name], path.Key(name), depth+1)
	}
	return models.ObjectValue(fields)
}

func (w *walker) walkProtoList(list *structpb.ListValue, path models.Path, depth int) models.Value {
	if list == nil {
		return models.ArrayValue()
	}
	key := visitKey{ptr: reflect.ValueOf(list).Pointer(), typ: reflect.TypeOf(list)}
	if !w.enter(key, path) {
		return models.Value{}
	}
	defer w.leave(key)

	elems := make([]models.Value, len(list.GetValues()))
	for i, e := range list.GetValues() {
		if w.stopped {
			break
		}
		elems[i] = w.walk(e, path.Index(i), depth+1)
	}
	return models.ArrayValue(elems...)
}
