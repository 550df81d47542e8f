// Package organize groups resolved RPC methods into logical services by their
// dot-delimited namespace.
package organize

import (
	"sort"
	"strings"

	"github.com/openrpckit/openrpcgen/internal/naming"
	"github.com/openrpckit/openrpcgen/internal/spec"
)

// DefaultNamespace is the sentinel namespace for methods without a dot.
const DefaultNamespace = "default"

// Service is one namespace's worth of methods.
type Service struct {
	Name      string // derived service type name, e.g. UserService
	Namespace string
	Methods   []Method
}

// Method pairs a resolved spec method with its derived naming parts.
type Method struct {
	spec.Method
	Namespace  string
	Suffix     string // method name after the first dot
	MethodName string // exported identifier derived from Suffix
}

// SplitName splits "user.getById" into ("user", "getById"). Methods without a
// dot belong to the default namespace.
func SplitName(methodName string) (namespace, suffix string) {
	if i := strings.Index(methodName, "."); i >= 0 {
		return methodName[:i], methodName[i+1:]
	}
	return DefaultNamespace, methodName
}

// Group buckets methods into services. Output ordering is part of the
// generator's contract: non-default services sorted by derived service name,
// with the default service always last.
func Group(methods []spec.Method) []Service {
	index := map[string]int{}
	var services []Service

	for _, m := range methods {
		ns, suffix := SplitName(m.Name)
		om := Method{
			Method:     m,
			Namespace:  ns,
			Suffix:     suffix,
			MethodName: naming.MethodIdentifier(suffix),
		}
		i, ok := index[ns]
		if !ok {
			i = len(services)
			index[ns] = i
			services = append(services, Service{
				Name:      naming.ServiceName(ns),
				Namespace: ns,
			})
		}
		services[i].Methods = append(services[i].Methods, om)
	}

	sort.SliceStable(services, func(i, j int) bool {
		if services[i].Namespace == DefaultNamespace {
			return false
		}
		if services[j].Namespace == DefaultNamespace {
			return true
		}
		return services[i].Name < services[j].Name
	})
	return services
}
