package model

import (
	"fmt"
)

type ID int64

func (i ID) String() string {
	return fmt.Sprintf("%v", int64(i))
}
