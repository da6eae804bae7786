package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func TestNormalizeMySQLDSN(t *testing.T) {
	got := normalizeMySQLDSN("mysql://root:pw@db:3306/app?charset=latin1", "", "")
	assert.Equal(t, "root:pw@tcp(db:3306)/app?charset=latin1&parseTime=true", got)

	got = normalizeMySQLDSN("jdbc:mysql://root@db:3306/app", "svc", "s3")
	assert.Equal(t, "svc:s3@tcp(db:3306)/app?charset=utf8mb4&parseTime=true", got)

	native := "root:pw@tcp(db:3306)/app?parseTime=true"
	assert.Equal(t, native, normalizeMySQLDSN(native, "", ""))
}

func TestMaskDSN(t *testing.T) {
	assert.Equal(t, "root:****@tcp(db:3306)/app", maskDSN("root:pw@tcp(db:3306)/app"))
	assert.Equal(t, "tcp(db:3306)/app", maskDSN("tcp(db:3306)/app"))
	assert.Equal(t, "postgres://app:xxxxx@db:5432/usdrop?sslmode=disable", maskDSN("postgres://app:secret@db:5432/usdrop?sslmode=disable"))
	assert.Equal(t, "host=db user=app password=**** dbname=usdrop", maskDSN("host=db user=app password=secret dbname=usdrop"))
}

func TestNewGorm_UnsupportedDriver(t *testing.T) {
	_, err := NewGorm(Opts{Driver: "sqlite"}, zaptest.NewLogger(t))
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}
