// Package archive exports games as DAG-CBOR records packed in a CAR file,
// the same block format AT Protocol repositories use.
package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ipfs/go-cid"
	"github.com/ipld/go-car"
	carutil "github.com/ipld/go-car/util"
	"github.com/ipld/go-ipld-prime"
	"github.com/ipld/go-ipld-prime/codec/dagcbor"
	"github.com/ipld/go-ipld-prime/datamodel"
	"github.com/ipld/go-ipld-prime/fluent/qp"
	"github.com/ipld/go-ipld-prime/node/basicnode"
	"github.com/justinabrahms/hidetheking/internal/chess"
	"github.com/justinabrahms/hidetheking/internal/hidden"
	"github.com/multiformats/go-multihash"
)

// RecordType is the $type of an archived game record.
const RecordType = "app.hidetheking.game"

var ErrRootNotFound = errors.New("root block not found in CAR file")

var recordPrefix = cid.Prefix{
	Version:  1,
	Codec:    cid.DagCBOR,
	MhType:   multihash.SHA2_256,
	MhLength: -1,
}

// Game is everything an archived record holds. Hidden is only written for
// finished games.
type Game struct {
	ID          string
	CreatedAt   time.Time
	State       chess.State
	HiddenSides hidden.Sides
	Moves       []*chess.ExecutionRecord
	Hidden      []hidden.Snapshot
}

// Encode builds the DAG-CBOR record of g.
func Encode(g Game) ([]byte, error) {
	node, err := qp.BuildMap(basicnode.Prototype.Any, -1, func(ma datamodel.MapAssembler) {
		qp.MapEntry(ma, "$type", qp.String(RecordType))
		qp.MapEntry(ma, "id", qp.String(g.ID))
		qp.MapEntry(ma, "createdAt", qp.String(g.CreatedAt.UTC().Format(time.RFC3339)))
		qp.MapEntry(ma, "status", qp.String(string(g.State.Status)))
		if g.State.Method != chess.NoMethod {
			qp.MapEntry(ma, "method", qp.String(string(g.State.Method)))
		}
		qp.MapEntry(ma, "hiddenSides", qp.String(string(g.HiddenSides)))
		qp.MapEntry(ma, "moves", qp.List(int64(len(g.Moves)), func(la datamodel.ListAssembler) {
			for _, rec := range g.Moves {
				qp.ListEntry(la, moveNode(rec))
			}
		}))
		if g.State.Status != chess.StatusActive && len(g.Hidden) > 0 {
			qp.MapEntry(ma, "hidden", qp.List(int64(len(g.Hidden)), func(la datamodel.ListAssembler) {
				for _, h := range g.Hidden {
					qp.ListEntry(la, hiddenNode(h))
				}
			}))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build record: %w", err)
	}

	var buf bytes.Buffer
	if err := dagcbor.Encode(node, &buf); err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	return buf.Bytes(), nil
}

func moveNode(rec *chess.ExecutionRecord) qp.Assemble {
	return qp.Map(-1, func(ma datamodel.MapAssembler) {
		qp.MapEntry(ma, "san", qp.String(rec.SAN()))
		qp.MapEntry(ma, "color", qp.String(rec.Color.String()))
		qp.MapEntry(ma, "from", qp.String(rec.From.String()))
		qp.MapEntry(ma, "to", qp.String(rec.To.String()))
		qp.MapEntry(ma, "piece", qp.Int(int64(rec.PieceID)))
		if rec.Captured != nil {
			qp.MapEntry(ma, "captured", qp.Int(int64(rec.Captured.ID)))
		}
		if rec.Promotion != chess.NoKind {
			qp.MapEntry(ma, "promotion", qp.String(rec.Promotion.String()))
		}
	})
}

func hiddenNode(h hidden.Snapshot) qp.Assemble {
	return qp.Map(-1, func(ma datamodel.MapAssembler) {
		qp.MapEntry(ma, "color", qp.String(h.Color.String()))
		qp.MapEntry(ma, "state", qp.String(h.State.String()))
		if h.PieceID != 0 {
			qp.MapEntry(ma, "piece", qp.Int(int64(h.PieceID)))
			qp.MapEntry(ma, "kind", qp.String(h.Kind.String()))
		}
		qp.MapEntry(ma, "captured", qp.Bool(h.Captured))
	})
}

// WriteCAR writes record as the single root block of a CARv1 stream.
func WriteCAR(w io.Writer, record []byte) (cid.Cid, error) {
	root, err := recordPrefix.Sum(record)
	if err != nil {
		return cid.Undef, fmt.Errorf("failed to hash record: %w", err)
	}
	if err := car.WriteHeader(&car.CarHeader{Roots: []cid.Cid{root}, Version: 1}, w); err != nil {
		return cid.Undef, fmt.Errorf("failed to write CAR header: %w", err)
	}
	if err := carutil.LdWrite(w, root.Bytes(), record); err != nil {
		return cid.Undef, fmt.Errorf("failed to write block: %w", err)
	}
	return root, nil
}

// ReadCAR returns the decoded root record of a CAR stream.
func ReadCAR(r io.Reader) (map[string]interface{}, error) {
	reader, err := car.NewCarReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create CAR reader: %w", err)
	}
	root := reader.Header.Roots[0]

	for {
		block, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read block: %w", err)
		}
		if !block.Cid().Equals(root) {
			continue
		}

		sum, err := block.Cid().Prefix().Sum(block.RawData())
		if err != nil || !sum.Equals(root) {
			return nil, fmt.Errorf("block %s does not match its hash", root)
		}
		return Decode(block.RawData())
	}
	return nil, ErrRootNotFound
}

// Decode decodes a DAG-CBOR record into plain Go values.
func Decode(data []byte) (map[string]interface{}, error) {
	nb := basicnode.Prototype.Any.NewBuilder()
	if err := dagcbor.Decode(nb, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to decode CBOR: %w", err)
	}
	v, err := nodeToGo(nb.Build())
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("record is not a map")
	}
	return m, nil
}

func nodeToGo(node ipld.Node) (interface{}, error) {
	switch node.Kind() {
	case ipld.Kind_Map:
		m := make(map[string]interface{})
		iter := node.MapIterator()
		for !iter.Done() {
			k, v, err := iter.Next()
			if err != nil {
				return nil, err
			}
			key, err := k.AsString()
			if err != nil {
				return nil, err
			}
			val, err := nodeToGo(v)
			if err != nil {
				return nil, err
			}
			m[key] = val
		}
		return m, nil

	case ipld.Kind_List:
		list := []interface{}{}
		iter := node.ListIterator()
		for !iter.Done() {
			_, v, err := iter.Next()
			if err != nil {
				return nil, err
			}
			val, err := nodeToGo(v)
			if err != nil {
				return nil, err
			}
			list = append(list, val)
		}
		return list, nil

	case ipld.Kind_String:
		return node.AsString()
	case ipld.Kind_Int:
		return node.AsInt()
	case ipld.Kind_Bool:
		return node.AsBool()
	case ipld.Kind_Null:
		return nil, nil
	}
	return nil, fmt.Errorf("unsupported node kind: %v", node.Kind())
}
