package reply

import "github.com/cosmez/redistx-go/internal/rediserr"

// Decoder converts a Reply into a T. The scalar decoders below can be
// composed with Optional, Slice, Set, Map, Pairs and Pair to describe any
// reply shape:
//
//	reply.Map(reply.String, reply.Float)             // ZRANGE ... WITHSCORES
//	reply.Pair(reply.Val, reply.Slice(reply.String)) // one SCAN page
type Decoder[T any] func(Reply) (T, error)

// KV is one key/value element of an ordered mapping.
type KV[K, V any] struct {
	Key K
	Val V
}

// Tuple is a fixed two-element reply.
type Tuple[A, B any] struct {
	First  A
	Second B
}

// String decodes a bulk or status reply.
func String(r Reply) (string, error) { return r.Str() }

// Int decodes an Integer reply.
func Int(r Reply) (int64, error) { return r.Int() }

// Float decodes a float from its text or integer form.
func Float(r Reply) (float64, error) { return r.Float() }

// Val decodes an Integer or bulk reply into a Value.
func Val(r Reply) (Value, error) { return r.Val() }

// Bool decodes an Integer reply as "nonzero".
func Bool(r Reply) (bool, error) {
	n, err := r.Int()
	return n != 0, err
}

// Ack decodes a status reply as "was it OK".
func Ack(r Reply) (bool, error) { return r.IsOK() }

// Raw returns the reply after the universal Nil and Error checks.
func Raw(r Reply) (Reply, error) { return r, r.Err() }

// Optional decodes with d unless the reply is Nil, in which case it yields
// nil. Error replies still fail.
func Optional[T any](d Decoder[T]) Decoder[*T] {
	return func(r Reply) (*T, error) {
		if r.IsNil() {
			return nil, nil
		}
		v, err := d(r)
		if err != nil {
			return nil, err
		}
		return &v, nil
	}
}

// Slice decodes an Array reply element by element, keeping array order.
func Slice[T any](d Decoder[T]) Decoder[[]T] {
	return func(r Reply) ([]T, error) {
		elems, err := r.Elements()
		if err != nil {
			return nil, err
		}
		out := make([]T, 0, len(elems))
		for _, e := range elems {
			v, err := d(e)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}
}

// Set decodes an Array reply into a set. Duplicates collapse.
func Set[T comparable](d Decoder[T]) Decoder[map[T]struct{}] {
	return func(r Reply) (map[T]struct{}, error) {
		elems, err := r.Elements()
		if err != nil {
			return nil, err
		}
		out := make(map[T]struct{}, len(elems))
		for _, e := range elems {
			v, err := d(e)
			if err != nil {
				return nil, err
			}
			out[v] = struct{}{}
		}
		return out, nil
	}
}

// Pairs decodes an Array reply of alternating keys and values, preserving
// order. An odd element count fails with reply_data_incorrect.
func Pairs[K, V any](kd Decoder[K], vd Decoder[V]) Decoder[[]KV[K, V]] {
	return func(r Reply) ([]KV[K, V], error) {
		elems, err := r.Elements()
		if err != nil {
			return nil, err
		}
		if len(elems)%2 != 0 {
			return nil, rediserr.Newf(rediserr.ReplyDataIncorrect, r.cmd,
				"mapping reply has odd element count %d", len(elems))
		}
		out := make([]KV[K, V], 0, len(elems)/2)
		for i := 0; i < len(elems); i += 2 {
			k, err := kd(elems[i])
			if err != nil {
				return nil, err
			}
			v, err := vd(elems[i+1])
			if err != nil {
				return nil, err
			}
			out = append(out, KV[K, V]{Key: k, Val: v})
		}
		return out, nil
	}
}

// Map decodes an Array reply of alternating keys and values into a map.
// Later duplicate keys overwrite earlier ones.
func Map[K comparable, V any](kd Decoder[K], vd Decoder[V]) Decoder[map[K]V] {
	pairs := Pairs(kd, vd)
	return func(r Reply) (map[K]V, error) {
		kvs, err := pairs(r)
		if err != nil {
			return nil, err
		}
		out := make(map[K]V, len(kvs))
		for _, kv := range kvs {
			out[kv.Key] = kv.Val
		}
		return out, nil
	}
}

// Pair decodes an Array reply of exactly two elements.
func Pair[A, B any](ad Decoder[A], bd Decoder[B]) Decoder[Tuple[A, B]] {
	return func(r Reply) (Tuple[A, B], error) {
		var t Tuple[A, B]
		elems, err := r.Elements()
		if err != nil {
			return t, err
		}
		if len(elems) != 2 {
			return t, rediserr.Newf(rediserr.ReplyDataIncorrect, r.cmd,
				"pair reply has %d elements", len(elems))
		}
		if t.First, err = ad(elems[0]); err != nil {
			return t, err
		}
		if t.Second, err = bd(elems[1]); err != nil {
			return t, err
		}
		return t, nil
	}
}

// Decode runs d on r, passing through an error from the call that produced
// r:
//
//	r, err := c.Do(cmd)
//	n, err := reply.Decode(reply.Int, r, err)
func Decode[T any](d Decoder[T], r Reply, err error) (T, error) {
	if err != nil {
		var zero T
		return zero, err
	}
	return d(r)
}
