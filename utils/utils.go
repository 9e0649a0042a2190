package utils

import (
	"reflect"

	"github.com/gertd/go-pluralize"
	"github.com/iancoleman/strcase"
)

var (
	plurClient *pluralize.Client
)

func CamelCase(s string) string {
	return strcase.ToCamel(s)
}

func SnakeCase(s string) string {
	return strcase.ToSnake(s)
}

func Plural(s string) string {
	return plurClient.Plural(s)
}

func Singular(s string) string {
	return plurClient.Singular(s)
}

// TypeName returns the bare type name with any pointer levels stripped,
// e.g. "**GameDirector" and "GameDirector" both give "GameDirector".
func TypeName(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// DiagnosticName names the actor constructed to hold a fresh singleton
// instance, so it is recognizable in scene dumps and the event feed.
func DiagnosticName(t reflect.Type) string {
	return "singleton:" + SnakeCase(TypeName(t))
}

// KindKey turns an event kind into a storage key segment, e.g. "claim"
// becomes "claims".
func KindKey(kind string) string {
	return Plural(SnakeCase(kind))
}

func init() {
	strcase.ConfigureAcronym("API", "api")
	strcase.ConfigureAcronym("ID", "id")
	strcase.ConfigureAcronym("GUID", "guid")
	plurClient = pluralize.NewClient()
}
