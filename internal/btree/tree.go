package btree

import "isadb/internal/dbcore"

// KV is one (key, satellite value) pair, where the satellite value is the
// primary key of the row owning the indexed field.
type KV struct {
	Key   any
	Value any
}

// Tree is a B+-tree secondary index of domain T: every node holds between
// T-1 and 2T-1 keys (root excepted), internal keys are literal copies of
// their child subtree's minimum key, and leaves are threaded by Next into
// one ascending chain anchored at Head.
type Tree struct {
	Name string
	T    int
	Root *Node
	Head *Node
}

// New creates an empty tree: a single empty leaf that is both root and head.
func New(name string, domain int) *Tree {
	leaf := &Node{IsLeaf: true}
	return &Tree{Name: name, T: domain, Root: leaf, Head: leaf}
}

func (t *Tree) maxKeys() int { return 2*t.T - 1 }
func (t *Tree) minKeys() int { return t.T - 1 }

// childIndex returns the rightmost i with node.Keys[i] <= key, or 0 if key
// is smaller than every key in node (routes into the leftmost subtree,
// which childless-absorbs the new minimum).
func (t *Tree) childIndex(node *Node, key any) int {
	idx := 0
	for i, k := range node.Keys {
		if !keyLess(key, k) {
			idx = i
		} else {
			break
		}
	}
	return idx
}

// Insert adds key -> value to the tree.
func (t *Tree) Insert(key, value any) {
	if len(t.Root.Keys) == t.maxKeys() {
		oldRoot := t.Root
		newRoot := &Node{Keys: []any{oldRoot.minKey()}, Children: []*Node{oldRoot}}
		t.Root = newRoot
		t.splitChild(newRoot, 0)
	}
	t.insertNonFull(t.Root, key, value)
}

func (t *Tree) insertNonFull(node *Node, key, value any) {
	if node.IsLeaf {
		pos := 0
		for pos < len(node.Keys) && keyLess(node.Keys[pos], key) {
			pos++
		}
		if pos < len(node.Keys) && keysEqual(node.Keys[pos], key) {
			node.Values[pos] = value
			return
		}
		node.Keys = insertAny(node.Keys, pos, key)
		node.Values = insertAny(node.Values, pos, value)
		return
	}

	i := t.childIndex(node, key)
	if len(node.Children[i].Keys) == t.maxKeys() {
		if !t.rotateBeforeDescend(node, i) {
			t.splitChild(node, i)
		}
		i = t.childIndex(node, key)
	}
	t.insertNonFull(node.Children[i], key, value)
	node.Keys[i] = node.Children[i].minKey()
}

// splitChild splits the full child at index i of parent, moving its last T
// items into a freshly created right sibling inserted at i+1.
func (t *Tree) splitChild(parent *Node, i int) {
	child := parent.Children[i]
	splitAt := len(child.Keys) - t.T
	sibling := &Node{IsLeaf: child.IsLeaf}

	sibling.Keys = append(sibling.Keys, child.Keys[splitAt:]...)
	child.Keys = child.Keys[:splitAt:splitAt]

	if child.IsLeaf {
		sibling.Values = append(sibling.Values, child.Values[splitAt:]...)
		child.Values = child.Values[:splitAt:splitAt]
		sibling.Next = child.Next
		child.Next = sibling
	} else {
		sibling.Children = append(sibling.Children, child.Children[splitAt:]...)
		child.Children = child.Children[:splitAt:splitAt]
	}

	parent.Keys = insertAny(parent.Keys, i+1, sibling.minKey())
	parent.Children = insertNode(parent.Children, i+1, sibling)
}

// rotateBeforeDescend relieves a full child at index i by moving one item
// to a sibling with at least 2 free slots, preferring the left sibling.
func (t *Tree) rotateBeforeDescend(node *Node, i int) bool {
	if i > 0 {
		left := node.Children[i-1]
		if t.maxKeys()-len(left.Keys) >= 2 {
			moveFirstToEnd(node.Children[i], left)
			node.Keys[i-1] = left.minKey()
			node.Keys[i] = node.Children[i].minKey()
			return true
		}
	}
	if i+1 < len(node.Children) {
		right := node.Children[i+1]
		if t.maxKeys()-len(right.Keys) >= 2 {
			moveLastToFront(node.Children[i], right)
			node.Keys[i+1] = right.minKey()
			node.Keys[i] = node.Children[i].minKey()
			return true
		}
	}
	return false
}

// moveFirstToEnd moves src's smallest item onto the end of dst (dst's items
// are all smaller, so order is preserved).
func moveFirstToEnd(src, dst *Node) {
	if src.IsLeaf {
		dst.Keys = append(dst.Keys, src.Keys[0])
		dst.Values = append(dst.Values, src.Values[0])
		src.Keys = src.Keys[1:]
		src.Values = src.Values[1:]
	} else {
		dst.Keys = append(dst.Keys, src.Keys[0])
		dst.Children = append(dst.Children, src.Children[0])
		src.Keys = src.Keys[1:]
		src.Children = src.Children[1:]
	}
}

// moveLastToFront moves src's largest item onto the front of dst (dst's
// items are all larger, so order is preserved).
func moveLastToFront(src, dst *Node) {
	last := len(src.Keys) - 1
	if src.IsLeaf {
		dst.Keys = insertAny(dst.Keys, 0, src.Keys[last])
		dst.Values = insertAny(dst.Values, 0, src.Values[last])
		src.Keys = src.Keys[:last]
		src.Values = src.Values[:last]
	} else {
		dst.Keys = insertAny(dst.Keys, 0, src.Keys[last])
		dst.Children = insertNode(dst.Children, 0, src.Children[last])
		src.Keys = src.Keys[:last]
		src.Children = src.Children[:last]
	}
}

// Delete removes key from the tree, reporting whether it was present.
func (t *Tree) Delete(key any) bool {
	found := t.deleteFrom(t.Root, key)
	for !t.Root.IsLeaf && len(t.Root.Children) == 1 {
		t.Root = t.Root.Children[0]
	}
	return found
}

func (t *Tree) deleteFrom(node *Node, key any) bool {
	if node.IsLeaf {
		for i, k := range node.Keys {
			if keysEqual(k, key) {
				node.Keys = append(node.Keys[:i], node.Keys[i+1:]...)
				node.Values = append(node.Values[:i], node.Values[i+1:]...)
				return true
			}
		}
		return false
	}

	i := t.childIndex(node, key)
	if len(node.Children[i].Keys) == t.minKeys() {
		if !t.deRotate(node, i) {
			t.merge(node, i)
			i = t.childIndex(node, key)
		}
	}
	found := t.deleteFrom(node.Children[i], key)
	if i < len(node.Children) {
		node.Keys[i] = node.Children[i].minKey()
	}
	return found
}

// deRotate relieves a minimum-occupancy child at index i by pulling one
// item from a sibling that has more than the minimum, preferring the left
// sibling (de-rotation before merge).
func (t *Tree) deRotate(node *Node, i int) bool {
	if i > 0 {
		left := node.Children[i-1]
		if len(left.Keys) > t.minKeys() {
			moveLastToFront(left, node.Children[i])
			node.Keys[i-1] = left.minKey()
			node.Keys[i] = node.Children[i].minKey()
			return true
		}
	}
	if i+1 < len(node.Children) {
		right := node.Children[i+1]
		if len(right.Keys) > t.minKeys() {
			moveFirstToEnd(right, node.Children[i])
			node.Keys[i+1] = right.minKey()
			node.Keys[i] = node.Children[i].minKey()
			return true
		}
	}
	return false
}

// merge absorbs the child at index i into an adjacent sibling that is also
// at minimum occupancy, preferring the left sibling.
func (t *Tree) merge(node *Node, i int) {
	if i > 0 {
		left := node.Children[i-1]
		right := node.Children[i]
		mergeInto(left, right)
		node.Keys = append(node.Keys[:i], node.Keys[i+1:]...)
		node.Children = append(node.Children[:i], node.Children[i+1:]...)
		return
	}
	left := node.Children[i]
	right := node.Children[i+1]
	mergeInto(left, right)
	node.Keys = append(node.Keys[:i+1], node.Keys[i+2:]...)
	node.Children = append(node.Children[:i+1], node.Children[i+2:]...)
}

func mergeInto(left, right *Node) {
	left.Keys = append(left.Keys, right.Keys...)
	if left.IsLeaf {
		left.Values = append(left.Values, right.Values...)
		left.Next = right.Next
	} else {
		left.Children = append(left.Children, right.Children...)
	}
}

// Get returns the value stored under key, if any.
func (t *Tree) Get(key any) (any, bool) {
	leaf := t.findLeaf(key)
	for i, k := range leaf.Keys {
		if keysEqual(k, key) {
			return leaf.Values[i], true
		}
	}
	return nil, false
}

func (t *Tree) findLeaf(key any) *Node {
	node := t.Root
	for !node.IsLeaf {
		node = node.Children[t.childIndex(node, key)]
	}
	return node
}

// GetKey returns the first key whose stored value equals value.
func (t *Tree) GetKey(value any) (any, bool) {
	for node := t.Head; node != nil; node = node.Next {
		for i, v := range node.Values {
			if v == value {
				return node.Keys[i], true
			}
		}
	}
	return nil, false
}

// UpdateItem rewrites the satellite value stored under key.
func (t *Tree) UpdateItem(key, newValue any) error {
	leaf := t.findLeaf(key)
	for i, k := range leaf.Keys {
		if keysEqual(k, key) {
			leaf.Values[i] = newValue
			return nil
		}
	}
	return dbcore.Newf(dbcore.KindIndex, "key %v not found", key)
}

// UpdateKey rewrites the key at the leaf where old was found, in place.
// Valid only when the new key does not change the key's sorted position
// relative to its neighbors; callers (table-level UPDATE) must ensure this,
// since no rebalancing is performed.
func (t *Tree) UpdateKey(oldKey, newKey any) error {
	leaf := t.findLeaf(oldKey)
	for i, k := range leaf.Keys {
		if keysEqual(k, oldKey) {
			leaf.Keys[i] = newKey
			return nil
		}
	}
	return dbcore.Newf(dbcore.KindIndex, "key %v not found", oldKey)
}

// Traversal returns every (key, value) pair in ascending key order.
func (t *Tree) Traversal() []KV {
	var out []KV
	for node := t.Head; node != nil; node = node.Next {
		for i, k := range node.Keys {
			out = append(out, KV{Key: k, Value: node.Values[i]})
		}
	}
	return out
}

// GetRange returns every (key, value) pair with left <= key <= right (or
// strictly so, per leftEq/rightEq); a nil bound is unbounded on that side.
func (t *Tree) GetRange(left any, leftEq bool, right any, rightEq bool) []KV {
	if left != nil && right != nil {
		if rightEq && leftEq && keyLess(right, left) {
			return nil
		}
		if (!rightEq || !leftEq) && !keyLess(left, right) {
			return nil
		}
	}

	var node *Node
	if left == nil {
		node = t.Head
	} else {
		node = t.findLeaf(left)
	}

	var out []KV
	for ; node != nil; node = node.Next {
		for i, k := range node.Keys {
			if left != nil {
				if leftEq && keyLess(k, left) {
					continue
				}
				if !leftEq && !keyLess(left, k) {
					continue
				}
			}
			if right != nil {
				if rightEq && keyLess(right, k) {
					return out
				}
				if !rightEq && !keyLess(k, right) {
					return out
				}
			}
			out = append(out, KV{Key: k, Value: node.Values[i]})
		}
	}
	return out
}

// Len reports the number of keys currently stored.
func (t *Tree) Len() int {
	n := 0
	for node := t.Head; node != nil; node = node.Next {
		n += len(node.Keys)
	}
	return n
}
