package errx

import "errors"

// Kind identifies a family of errors for handler dispatch.
// Kinds form a tree rooted at KindError; a kind's ancestry is walked from
// the most specific kind up to the root.
type Kind struct {
	name   string
	parent *Kind
}

var (
	// KindError is the universal base kind. Every error has it as an ancestor.
	KindError = &Kind{name: "Error"}

	// KindHTTP is the kind of framework level HTTP errors
	KindHTTP = NewKind("HTTPError", KindError)

	// KindException is the kind of domain exceptions
	KindException = NewKind("Exception", KindHTTP)
)

// NewKind creates a kind derived from parent. A nil parent means KindError.
func NewKind(name string, parent *Kind) *Kind {
	if parent == nil {
		parent = KindError
	}
	return &Kind{name: name, parent: parent}
}

// Name returns the kind name
func (k *Kind) Name() string { return k.name }

// Parent returns the parent kind, nil for KindError
func (k *Kind) Parent() *Kind { return k.parent }

// String implements fmt.Stringer
func (k *Kind) String() string { return k.name }

// Ancestry returns k followed by its ancestors, most specific first
func (k *Kind) Ancestry() []*Kind {
	var chain []*Kind
	for cur := k; cur != nil; cur = cur.parent {
		chain = append(chain, cur)
	}
	return chain
}

// Is reports whether k is target or derives from it
func (k *Kind) Is(target *Kind) bool {
	for cur := k; cur != nil; cur = cur.parent {
		if cur == target {
			return true
		}
	}
	return false
}

// Kinded is implemented by errors that declare their kind
type Kinded interface {
	error
	Kind() *Kind
}

// KindOf returns the kind of the first error in err's chain that declares
// one, or KindError when none does.
func KindOf(err error) *Kind {
	var k Kinded
	if errors.As(err, &k) {
		if kind := k.Kind(); kind != nil {
			return kind
		}
	}
	return KindError
}
