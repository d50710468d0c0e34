package models_test

import (
	"github.com/richardsr020/maxim-advisor/internal/models"
	"github.com/richardsr020/maxim-advisor/internal/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Connect reconnects with the foreign key pragma after migrating. A DSN
// that already carries a query string must still produce a valid
// reconnect DSN.
func (suite *TestSuiteStandard) TestConnectWithQueryStringDSN() {
	dsn := test.TmpFile(suite.T()) + "?_pragma=busy_timeout(1000)"

	err := models.Connect(dsn)
	require.Nil(suite.T(), err)

	var count int64
	err = models.DB.Model(&models.Category{}).Count(&count).Error
	assert.Nil(suite.T(), err)
}

func (suite *TestSuiteStandard) TestConnectWithPragmaDSN() {
	dsn := test.TmpFile(suite.T()) + "?_pragma=foreign_keys(1)"

	err := models.Connect(dsn)
	require.Nil(suite.T(), err)
}
