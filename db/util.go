package db

var (
	// NamespaceAccounts holds the serialized account records keyed by
	// account id.
	NamespaceAccounts = []byte("acct")

	EmptyKey  = []byte{}
	Separator = []byte("|")
)

func PrependNamespace(namespace []byte, key []byte) []byte {
	if namespace != nil {
		return append(append(namespace, Separator...), key...)
	}
	return key
}

// NamespaceEnd returns the exclusive upper bound for iterating every key
// under namespace.
func NamespaceEnd(namespace []byte) []byte {
	end := make([]byte, len(namespace)+len(Separator))
	copy(end, namespace)
	copy(end[len(namespace):], Separator)
	end[len(end)-1]++
	return end
}

func ConvNilToBytes(byteArray []byte) []byte {
	if byteArray == nil {
		return []byte{}
	}
	return byteArray
}
