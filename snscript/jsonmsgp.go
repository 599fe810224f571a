package snscript

import (
	"bytes"
	"reflect"

	"github.com/ugorji/go/codec"
)

type jsonHelper struct {
	initialized bool
	jh          codec.JsonHandle
	pretty      codec.JsonHandle
}

func (m *jsonHelper) init() {
	if m.initialized {
		return
	}
	m.jh.MapType = reflect.TypeOf(map[string]interface{}(nil))
	m.jh.SignedInteger = true
	m.jh.Canonical = true // sort maps before writing them

	m.pretty.MapType = m.jh.MapType
	m.pretty.SignedInteger = true
	m.pretty.Canonical = true
	m.pretty.Indent = 2

	m.initialized = true
}

var jsonHelp jsonHelper

func init() {
	jsonHelp.init()
}

// go -> json
func GoToJson(iface interface{}) ([]byte, error) {
	var w bytes.Buffer
	encoder := codec.NewEncoder(&w, &jsonHelp.jh)
	err := encoder.Encode(iface)
	if err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// GoToPrettyJson is GoToJson with two-space indentation.
func GoToPrettyJson(iface interface{}) ([]byte, error) {
	var w bytes.Buffer
	encoder := codec.NewEncoder(&w, &jsonHelp.pretty)
	err := encoder.Encode(iface)
	if err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// json -> go
func JsonToGo(json []byte) (interface{}, error) {
	var iface interface{}
	decoder := codec.NewDecoderBytes(json, &jsonHelp.jh)
	err := decoder.Decode(&iface)
	if err != nil {
		return nil, err
	}
	VPrintf("decoded type : %T", iface)
	return iface, nil
}
