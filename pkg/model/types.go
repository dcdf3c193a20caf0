package model

import internalmodel "github.com/goliatone/go-formpost/internal/model"

// FieldType re-exports the internal FieldType enumeration.
type FieldType = internalmodel.FieldType

const (
	FieldTypeString  = internalmodel.FieldTypeString
	FieldTypeInteger = internalmodel.FieldTypeInteger
	FieldTypeNumber  = internalmodel.FieldTypeNumber
	FieldTypeBoolean = internalmodel.FieldTypeBoolean
	FieldTypeArray   = internalmodel.FieldTypeArray
	FieldTypeFile    = internalmodel.FieldTypeFile
)

const (
	MetadataInput  = internalmodel.MetadataInput
	MetadataSecret = internalmodel.MetadataSecret
	MetadataAccept = internalmodel.MetadataAccept
)

type Field = internalmodel.Field
type FormModel = internalmodel.FormModel
