package snscript

import (
	"bufio"
	"fmt"
	"os"

	gmsgp "github.com/glycerine/greenpack/msgp"
	"github.com/tinylib/msgp/msgp"
)

// ValueRecord is the serializable form of a Value. Functions are
// recorded by name only.
type ValueRecord struct {
	Kind string `msg:"kind" json:"kind"`
	Int  int64  `msg:"int" json:"int,omitempty"`
	Bool bool   `msg:"bool" json:"bool,omitempty"`
	Name string `msg:"name" json:"name,omitempty"`
}

func (v Value) Record() ValueRecord {
	r := ValueRecord{Kind: v.typ.String()}
	switch v.typ {
	case ValueInteger:
		r.Int = v.i
	case ValueBoolean:
		r.Bool = v.i != 0
	case ValueUserFn:
		r.Name = v.fn.Name.Name()
	case ValueBuiltinFn:
		r.Name = v.builtin.Name
	}
	return r
}

func (r ValueRecord) String() string {
	switch r.Kind {
	case "integer":
		return fmt.Sprintf("%d", r.Int)
	case "boolean":
		return fmt.Sprintf("%v", r.Bool)
	case "fn":
		return fmt.Sprintf("<fn %s>", r.Name)
	case "builtin":
		return fmt.Sprintf("<builtin %s>", r.Name)
	}
	return r.Kind
}

// MarshalMsg implements msgp.Marshaler
func (r *ValueRecord) MarshalMsg(b []byte) (o []byte, err error) {
	o = msgp.Require(b, r.Msgsize())
	o = msgp.AppendMapHeader(o, 4)
	o = msgp.AppendString(o, "kind")
	o = msgp.AppendString(o, r.Kind)
	o = msgp.AppendString(o, "int")
	o = msgp.AppendInt64(o, r.Int)
	o = msgp.AppendString(o, "bool")
	o = msgp.AppendBool(o, r.Bool)
	o = msgp.AppendString(o, "name")
	o = msgp.AppendString(o, r.Name)
	return
}

// UnmarshalMsg implements msgp.Unmarshaler
func (r *ValueRecord) UnmarshalMsg(bts []byte) (o []byte, err error) {
	var field string
	var sz uint32
	sz, bts, err = msgp.ReadMapHeaderBytes(bts)
	if err != nil {
		err = msgp.WrapError(err)
		return
	}
	for sz > 0 {
		sz--
		field, bts, err = msgp.ReadStringBytes(bts)
		if err != nil {
			err = msgp.WrapError(err)
			return
		}
		switch field {
		case "kind":
			r.Kind, bts, err = msgp.ReadStringBytes(bts)
		case "int":
			r.Int, bts, err = msgp.ReadInt64Bytes(bts)
		case "bool":
			r.Bool, bts, err = msgp.ReadBoolBytes(bts)
		case "name":
			r.Name, bts, err = msgp.ReadStringBytes(bts)
		default:
			bts, err = msgp.Skip(bts)
		}
		if err != nil {
			err = msgp.WrapError(err, field)
			return
		}
	}
	o = bts
	return
}

// Msgsize returns an upper bound estimate of the number of bytes
// occupied by the serialized message
func (r *ValueRecord) Msgsize() int {
	return msgp.MapHeaderSize +
		5 + msgp.StringPrefixSize + len(r.Kind) +
		4 + msgp.Int64Size +
		5 + msgp.BoolSize +
		5 + msgp.StringPrefixSize + len(r.Name)
}

// RunReport summarizes one run of a program: what ran, how it ended
// and what it cost.
type RunReport struct {
	File         string      `json:"file"`
	Fingerprint  uint64      `json:"fingerprint"`
	Result       ValueRecord `json:"result"`
	ErrKind      string      `json:"err_kind,omitempty"`
	ErrLine      int         `json:"err_line,omitempty"`
	ErrCol       int         `json:"err_col,omitempty"`
	ErrSym       string      `json:"err_sym,omitempty"`
	ErrText      string      `json:"err_text,omitempty"`
	PeakFrames   int         `json:"peak_frames"`
	PeakValues   int         `json:"peak_values"`
	Steps        int64       `json:"steps"`
	ElapsedNanos int64       `json:"elapsed_nanos"`
}

// NewRunReport describes the most recent run of p, which returned
// result and err.
func NewRunReport(p *Program, result Value, err error) *RunReport {
	st := p.Stats()
	r := &RunReport{
		File:         p.Filename,
		Fingerprint:  Blake2bUint64(p.Source()),
		Result:       result.Record(),
		PeakFrames:   st.PeakFrames,
		PeakValues:   st.PeakValues,
		Steps:        st.Steps,
		ElapsedNanos: p.Elapsed().Nanoseconds(),
	}
	if err != nil {
		r.ErrText = err.Error()
		if e, ok := err.(*Error); ok {
			r.ErrKind = e.Kind.String()
			r.ErrLine = e.Line
			r.ErrCol = e.Col
			r.ErrSym = e.Sym
		}
	}
	return r
}

// EncodeMsg writes r as a msgpack map.
func (r *RunReport) EncodeMsg(w *gmsgp.Writer) error {
	res, err := r.Result.MarshalMsg(nil)
	if err != nil {
		return err
	}
	if err = w.WriteMapHeader(12); err != nil {
		return err
	}
	strs := []struct{ k, v string }{
		{"file", r.File}, {"err_kind", r.ErrKind}, {"err_sym", r.ErrSym}, {"err_text", r.ErrText},
	}
	for _, s := range strs {
		if err = w.WriteString(s.k); err != nil {
			return err
		}
		if err = w.WriteString(s.v); err != nil {
			return err
		}
	}
	ints := []struct {
		k string
		v int64
	}{
		{"err_line", int64(r.ErrLine)}, {"err_col", int64(r.ErrCol)},
		{"peak_frames", int64(r.PeakFrames)}, {"peak_values", int64(r.PeakValues)},
		{"steps", r.Steps}, {"elapsed_nanos", r.ElapsedNanos},
	}
	for _, n := range ints {
		if err = w.WriteString(n.k); err != nil {
			return err
		}
		if err = w.WriteInt64(n.v); err != nil {
			return err
		}
	}
	if err = w.WriteString("fingerprint"); err != nil {
		return err
	}
	if err = w.WriteUint64(r.Fingerprint); err != nil {
		return err
	}
	if err = w.WriteString("result"); err != nil {
		return err
	}
	return w.WriteBytes(res)
}

// DecodeMsg reads a map written by EncodeMsg. Unknown keys are skipped.
func (r *RunReport) DecodeMsg(rd *gmsgp.Reader) error {
	sz, err := rd.ReadMapHeader()
	if err != nil {
		return err
	}
	for ; sz > 0; sz-- {
		key, err := rd.ReadString()
		if err != nil {
			return err
		}
		var n int64
		switch key {
		case "file":
			r.File, err = rd.ReadString()
		case "err_kind":
			r.ErrKind, err = rd.ReadString()
		case "err_sym":
			r.ErrSym, err = rd.ReadString()
		case "err_text":
			r.ErrText, err = rd.ReadString()
		case "err_line", "err_col", "peak_frames", "peak_values", "steps", "elapsed_nanos":
			n, err = rd.ReadInt64()
			switch key {
			case "err_line":
				r.ErrLine = int(n)
			case "err_col":
				r.ErrCol = int(n)
			case "peak_frames":
				r.PeakFrames = int(n)
			case "peak_values":
				r.PeakValues = int(n)
			case "steps":
				r.Steps = n
			case "elapsed_nanos":
				r.ElapsedNanos = n
			}
		case "fingerprint":
			r.Fingerprint, err = rd.ReadUint64()
		case "result":
			var raw []byte
			raw, err = rd.ReadBytes(nil)
			if err == nil {
				_, err = r.Result.UnmarshalMsg(raw)
			}
		default:
			err = rd.Skip()
		}
		if err != nil {
			return fmt.Errorf("run report field '%s': %w", key, err)
		}
	}
	return nil
}

// JSON renders r as indented JSON.
func (r *RunReport) JSON() ([]byte, error) {
	return GoToPrettyJson(r)
}

// SaveReport writes r to path. It refuses to overwrite an
// existing file.
func SaveReport(path string, r *RunReport) error {
	if FileExists(path) {
		return fmt.Errorf("%w '%s'", ErrFileExists, path)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error trying to create file '%s': '%v'", path, err)
	}
	defer f.Close()
	w := gmsgp.NewWriter(f)
	if err = r.EncodeMsg(w); err != nil {
		return err
	}
	if err = w.Flush(); err != nil {
		return err
	}
	VPrintf("saved run report to '%s'", path)
	return f.Close()
}

func LoadReport(path string) (*RunReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := &RunReport{}
	if err := r.DecodeMsg(gmsgp.NewReader(bufio.NewReader(f))); err != nil {
		return nil, fmt.Errorf("reading run report '%s': %w", path, err)
	}
	return r, nil
}

func FileExists(name string) bool {
	fi, err := os.Stat(name)
	if err != nil {
		return false
	}
	return !fi.IsDir()
}
