package page

import (
	"reflect"
	"unsafe"
)

func firstByte(region []byte) unsafe.Pointer {
	if len(region) == 0 {
		return nil
	}
	return unsafe.Pointer(&region[0])
}

func bytesAt(addr uintptr, ln int) []byte {
	var b []byte
	sl := (*reflect.SliceHeader)(unsafe.Pointer(&b))
	sl.Data, sl.Len, sl.Cap = addr, ln, ln
	return b
}
