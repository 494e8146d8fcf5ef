// Package ravecore is the public entry point to the reference-counted object
// runtime, its owning containers, and the revision-aware attribute table.
//
// Every object returned by a New or Create function carries one strong
// reference owned by the caller; hand it back with Release.
package ravecore

import (
	"github.com/comalice/ravecore/internal/attribute"
	"github.com/comalice/ravecore/internal/attrtable"
	"github.com/comalice/ravecore/internal/hashtable"
	"github.com/comalice/ravecore/internal/object"
	"github.com/comalice/ravecore/internal/objectlist"
)

type (
	Header     = object.Header
	Instance   = object.Instance
	Descriptor = object.Descriptor
	Tracker    = object.Tracker

	List        = objectlist.List
	HashTable   = hashtable.Table
	ClonePolicy = hashtable.ClonePolicy

	Attribute      = attribute.Attribute
	Format         = attribute.Format
	Document       = attribute.Document
	AttributeTable = attrtable.Table
	TableOption    = attrtable.Option
	Revision       = attrtable.Revision
	Snapshot       = attrtable.Snapshot
)

const (
	RevisionUndefined  = attrtable.RevisionUndefined
	Revision2_0        = attrtable.Revision2_0
	Revision2_1        = attrtable.Revision2_1
	Revision2_2        = attrtable.Revision2_2
	Revision2_3        = attrtable.Revision2_3
	Revision2_4        = attrtable.Revision2_4
	RevisionLatest     = attrtable.RevisionLatest
	RevisionMinTable   = attrtable.RevisionMinTable
	RevisionUnitChange = attrtable.RevisionUnitChange

	CloneStrict          = hashtable.CloneStrict
	CloneSkipUncloneable = hashtable.CloneSkipUncloneable

	FormatUndefined   = attribute.Undefined
	FormatLong        = attribute.Long
	FormatDouble      = attribute.Double
	FormatString      = attribute.String
	FormatLongArray   = attribute.LongArray
	FormatDoubleArray = attribute.DoubleArray
)

var (
	ErrNotCloneable        = object.ErrNotCloneable
	ErrNotFound            = attrtable.ErrNotFound
	ErrUnsupportedRevision = attrtable.ErrUnsupportedRevision
	ErrShapeMismatch       = attrtable.ErrShapeMismatch
)

// Object runtime.
var (
	Create          = object.Create
	Retain          = object.Retain
	Release         = object.Release
	Clone           = object.Clone
	Cloneable       = object.Cloneable
	Bind            = object.Bind
	Unbind          = object.Unbind
	Binding         = object.Binding
	RefCount        = object.RefCount
	TypeOf          = object.TypeOf
	IsType          = object.IsType
	EnableTracking  = object.EnableTracking
	DisableTracking = object.DisableTracking
)

// Containers and attributes.
var (
	NewList        = objectlist.New
	NewHashTable   = hashtable.New
	NewAttribute   = attribute.New
	NewLong        = attribute.NewLong
	NewDouble      = attribute.NewDouble
	NewString      = attribute.NewString
	NewLongArray   = attribute.NewLongArray
	NewDoubleArray = attribute.NewDoubleArray
	FromDocument   = attribute.FromDocument
	NewTable       = attrtable.New
	ParseRevision  = attrtable.ParseRevision

	WithRevision     = attrtable.WithRevision
	WithStrictShapes = attrtable.WithStrictShapes
	WithTableLogger  = attrtable.WithLogger
	WithBuckets      = hashtable.WithBuckets
	WithClonePolicy  = hashtable.WithClonePolicy
)
