package tree

// ReplaceParams replaces declared type parameters according to m. Nullable
// uses of a parameter (`T?`) stay nullable after replacement.
func ReplaceParams(ty Type, m map[*TypeParam]Type) Type {
	if len(m) == 0 || ty == nil {
		return ty
	}
	switch ty := ty.(type) {
	case *TypeParam:
		if replacement, ok := m[ty.Decl()]; ok {
			if ty.Nullable {
				return WithNullable(replacement, true)
			}
			return replacement
		}
		return ty
	case *NominalType:
		if len(ty.Args) == 0 {
			return ty
		}
		args := make([]Type, len(ty.Args))
		for i, arg := range ty.Args {
			args[i] = ReplaceParams(arg, m)
		}
		return &NominalType{Name: ty.Name, Args: args, Nullable: ty.Nullable}
	case *FunctionType:
		params := make([]Type, len(ty.Params))
		for i, param := range ty.Params {
			params[i] = ReplaceParams(param, m)
		}
		return &FunctionType{Params: params, Return: ReplaceParams(ty.Return, m), Nullable: ty.Nullable}
	default:
		return ty
	}
}

// ParamMap zips declared parameters with arguments.
func ParamMap(params []*TypeParam, args []Type) map[*TypeParam]Type {
	m := make(map[*TypeParam]Type, len(params))
	for i, param := range params {
		if i < len(args) {
			m[param.Decl()] = args[i]
		}
	}
	return m
}

// ParamTypes returns the parameters as types, e.g. to build `List<E>` for
// the class `List` itself.
func ParamTypes(params []*TypeParam) []Type {
	out := make([]Type, len(params))
	for i, param := range params {
		out[i] = param
	}
	return out
}
