// Copyright (c) 2025 The KR8TIV Staking developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import "sync"

type (
	getFunc        func(key []byte) ([]byte, error)
	hasFunc        func(key []byte) (bool, error)
	putFunc        func(key, val []byte) error
	deleteFunc     func(key []byte) error
	isNotFoundFunc func(err error) bool
	newIterFunc    func(r Range) Iterator
)

func (f getFunc) Get(key []byte) ([]byte, error)   { return f(key) }
func (f hasFunc) Has(key []byte) (bool, error)     { return f(key) }
func (f putFunc) Put(key, val []byte) error        { return f(key, val) }
func (f deleteFunc) Delete(key []byte) error       { return f(key) }
func (f isNotFoundFunc) IsNotFound(err error) bool { return f(err) }
func (f newIterFunc) NewIterator(r Range) Iterator { return f(r) }

// Bucket provides a logical bucket over a kv store by key prefixing.
type Bucket string

// ProxyGetter creates a bucket getter from the source getter.
func (b Bucket) ProxyGetter(src Getter) Getter {
	return &struct {
		getFunc
		hasFunc
		isNotFoundFunc
		newIterFunc
	}{
		func(key []byte) ([]byte, error) {
			return src.Get(b.makeKey(key))
		},
		func(key []byte) (bool, error) {
			return src.Has(b.makeKey(key))
		},
		src.IsNotFound,
		func(r Range) Iterator {
			return src.NewIterator(b.makeRange(r))
		},
	}
}

// ProxyPutter creates a bucket putter from the source putter.
func (b Bucket) ProxyPutter(src Putter) Putter {
	return &bucketPutter{b, src}
}

type bucketPutter struct {
	bucket Bucket
	src    Putter
}

func (bp *bucketPutter) Put(key, val []byte) error {
	return bp.src.Put(bp.bucket.makeKey(key), val)
}

func (bp *bucketPutter) Delete(key []byte) error {
	return bp.src.Delete(bp.bucket.makeKey(key))
}

func (bp *bucketPutter) NewBatch() Batch {
	return &bucketBatch{bp.bucket, bp.src.NewBatch()}
}

type bucketBatch struct {
	bucket Bucket
	src    Batch
}

func (bb *bucketBatch) Put(key, val []byte) error {
	return bb.src.Put(bb.bucket.makeKey(key), val)
}

func (bb *bucketBatch) Delete(key []byte) error {
	return bb.src.Delete(bb.bucket.makeKey(key))
}

func (bb *bucketBatch) NewBatch() Batch { return bb.src.NewBatch() }
func (bb *bucketBatch) Len() int        { return bb.src.Len() }
func (bb *bucketBatch) Write() error    { return bb.src.Write() }

func (b Bucket) makeKey(key []byte) []byte {
	buf := bufPool.Get().(*buf)
	defer bufPool.Put(buf)
	buf.k = append(append(buf.k[:0], b...), key...)

	// copy since callers may retain the key
	k := make([]byte, len(buf.k))
	copy(k, buf.k)
	return k
}

func (b Bucket) makeRange(r Range) Range {
	from := append([]byte(b), r.From...)
	var to []byte
	if len(r.To) > 0 {
		to = append([]byte(b), r.To...)
	} else {
		// end of bucket
		to = append([]byte{}, b...)
		for i := len(to) - 1; i >= 0; i-- {
			to[i]++
			if to[i] != 0 {
				break
			}
		}
	}
	return Range{From: from, To: to}
}

type buf struct {
	k []byte
}

var bufPool = sync.Pool{
	New: func() any {
		return &buf{}
	},
}
