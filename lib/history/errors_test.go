package history

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	assert.Equal(t, ClassFatal, Classify(NewPreconditionError("r%v: bad", 3)))
	assert.Equal(t, ClassFatal, Classify(errors.Wrap(NewPreconditionError("bad"), "ingesting")))

	assert.Equal(t, ClassFatal, Classify(NewProviderError(ClassFatal, "svn info", errors.New("E170001"))))
	assert.Equal(t, ClassTransient, Classify(NewProviderError(ClassTransient, "svn log", errors.New("timeout"))))

	assert.Equal(t, ClassFatal, Classify(context.Canceled))
	assert.Equal(t, ClassFatal, Classify(errors.Wrap(context.DeadlineExceeded, "svn log")))

	assert.Equal(t, ClassTransient, Classify(errors.New("database is locked")))
}

func TestProviderErrorMessage(t *testing.T) {
	err := NewProviderError(ClassFatal, "svn info", errors.New("E170013: unable to connect"))

	assert.Equal(t, "svn info: E170013: unable to connect", err.Error())
	assert.True(t, IsFatal(err))
}

func TestPreconditionErrorMessage(t *testing.T) {
	err := NewPreconditionError("directory %v must end with /", "/trunk")

	assert.Equal(t, "precondition violated: directory /trunk must end with /", err.Error())
}
