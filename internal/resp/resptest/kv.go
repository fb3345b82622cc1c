package resptest

import (
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/cosmez/redistx-go/internal/resp"
)

// KV is a tiny single-connection key-value server understanding enough of
// the command set to exercise transactions: PING, ECHO, GET, SET (with NX
// and XX), DEL, EXISTS, INCR, INCRBY, TYPE, WATCH, UNWATCH, MULTI, EXEC and
// DISCARD. SCAN answers in a single page, sorted, honoring MATCH.
//
// Setting Conflicts makes the next n EXEC calls abort with a nil reply as if
// a watched key had been modified.
type KV struct {
	mu        sync.Mutex
	data      map[string]string
	inMulti   bool
	queued    [][]string
	watching  bool
	Conflicts int
	Execs     int
}

// NewKV returns an empty store.
func NewKV() *KV {
	return &KV{data: make(map[string]string)}
}

// Set stores a value directly, bypassing the wire.
func (kv *KV) Set(key, value string) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	kv.data[key] = value
}

// Get reads a value directly, bypassing the wire.
func (kv *KV) Get(key string) (string, bool) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	v, ok := kv.data[key]
	return v, ok
}

// Watching reports whether a WATCH is armed.
func (kv *KV) Watching() bool {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	return kv.watching
}

// Handle implements Handler.
func (kv *KV) Handle(args []string) resp.Value {
	kv.mu.Lock()
	defer kv.mu.Unlock()

	name := strings.ToUpper(args[0])
	if kv.inMulti {
		switch name {
		case "EXEC":
			return kv.exec()
		case "DISCARD":
			kv.inMulti = false
			kv.queued = nil
			kv.watching = false
			return resp.Status{Value: "OK"}
		case "MULTI":
			return resp.Error{Value: "ERR MULTI calls can not be nested"}
		case "WATCH":
			return resp.Error{Value: "ERR WATCH inside MULTI is not allowed"}
		}
		kv.queued = append(kv.queued, args)
		return resp.Status{Value: "QUEUED"}
	}

	switch name {
	case "MULTI":
		kv.inMulti = true
		return resp.Status{Value: "OK"}
	case "EXEC", "DISCARD":
		return resp.Error{Value: "ERR " + name + " without MULTI"}
	case "WATCH":
		kv.watching = true
		return resp.Status{Value: "OK"}
	case "UNWATCH":
		kv.watching = false
		return resp.Status{Value: "OK"}
	}
	return kv.apply(args)
}

func (kv *KV) exec() resp.Value {
	kv.Execs++
	queued := kv.queued
	kv.inMulti = false
	kv.queued = nil
	kv.watching = false

	if kv.Conflicts > 0 {
		kv.Conflicts--
		return resp.Nil{}
	}

	results := make([]resp.Value, len(queued))
	for i, args := range queued {
		results[i] = kv.apply(args)
	}
	return resp.Array{Elems: results}
}

func (kv *KV) apply(args []string) resp.Value {
	name := strings.ToUpper(args[0])
	switch name {
	case "PING":
		if len(args) > 1 {
			return resp.Bulk{Value: args[1]}
		}
		return resp.Status{Value: "PONG"}
	case "ECHO":
		if len(args) != 2 {
			return wrongArity(name)
		}
		return resp.Bulk{Value: args[1]}
	case "GET":
		if len(args) != 2 {
			return wrongArity(name)
		}
		v, ok := kv.data[args[1]]
		if !ok {
			return resp.Nil{}
		}
		return resp.Bulk{Value: v}
	case "SET":
		if len(args) < 3 {
			return wrongArity(name)
		}
		_, exists := kv.data[args[1]]
		for _, opt := range args[3:] {
			switch strings.ToUpper(opt) {
			case "NX":
				if exists {
					return resp.Nil{}
				}
			case "XX":
				if !exists {
					return resp.Nil{}
				}
			}
		}
		kv.data[args[1]] = args[2]
		return resp.Status{Value: "OK"}
	case "EXISTS":
		var n int64
		for _, k := range args[1:] {
			if _, ok := kv.data[k]; ok {
				n++
			}
		}
		return resp.Integer{Value: n}
	case "DEL":
		var n int64
		for _, k := range args[1:] {
			if _, ok := kv.data[k]; ok {
				delete(kv.data, k)
				n++
			}
		}
		return resp.Integer{Value: n}
	case "INCR", "INCRBY":
		by := int64(1)
		switch {
		case name == "INCR" && len(args) == 2:
		case name == "INCRBY" && len(args) == 3:
			n, err := strconv.ParseInt(args[2], 10, 64)
			if err != nil {
				return notInteger()
			}
			by = n
		default:
			return wrongArity(name)
		}
		cur, err := strconv.ParseInt(kv.dataOr(args[1], "0"), 10, 64)
		if err != nil {
			return notInteger()
		}
		cur += by
		kv.data[args[1]] = strconv.FormatInt(cur, 10)
		return resp.Integer{Value: cur}
	case "TYPE":
		if len(args) != 2 {
			return wrongArity(name)
		}
		if _, ok := kv.data[args[1]]; ok {
			return resp.Status{Value: "string"}
		}
		return resp.Status{Value: "none"}
	case "SCAN":
		return kv.scan(args)
	default:
		return resp.Error{Value: "ERR unknown command '" + args[0] + "'"}
	}
}

func (kv *KV) dataOr(key, def string) string {
	if v, ok := kv.data[key]; ok {
		return v
	}
	return def
}

func notInteger() resp.Value {
	return resp.Error{Value: "ERR value is not an integer or out of range"}
}

func wrongArity(name string) resp.Value {
	return resp.Error{Value: "ERR wrong number of arguments for '" + strings.ToLower(name) + "' command"}
}

func (kv *KV) scan(args []string) resp.Value {
	pattern := "*"
	for i := 2; i+1 < len(args); i += 2 {
		if strings.EqualFold(args[i], "MATCH") {
			pattern = args[i+1]
		}
	}
	keys := make([]string, 0, len(kv.data))
	for k := range kv.data {
		if ok, _ := path.Match(pattern, k); ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return resp.Array{Elems: []resp.Value{resp.Bulk{Value: "0"}, resp.Strings(keys...)}}
}
