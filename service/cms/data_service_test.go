package cms

import (
	"context"
	"testing"
	"time"

	"addonhub-service/service/models"
	"addonhub-service/service/schematic"
	"addonhub-service/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// DataServiceTestSuite 数据行服务测试套件
type DataServiceTestSuite struct {
	suite.Suite
	testDB  *testutil.TestDB
	factory *testutil.TestDataFactory
	service *DataService
	schema  *models.SchemaModel
	ctx     context.Context
}

func (s *DataServiceTestSuite) SetupTest() {
	s.testDB = testutil.NewTestDB()
	s.factory = testutil.NewTestDataFactory(s.testDB.DB)
	s.service = NewDataService(s.testDB.DB, nil)
	s.ctx = context.Background()
	s.schema = s.factory.CreateSchema(1,
		testutil.WithColumn("title", schematic.FieldText),
		testutil.WithColumn("price", schematic.FieldNumber),
		testutil.WithColumn("active", schematic.FieldBoolean),
		testutil.WithColumn("published", schematic.FieldDateTime),
		testutil.WithPrimaryField("title"),
	)
}

func (s *DataServiceTestSuite) TearDownTest() {
	s.testDB.Close()
}

func (s *DataServiceTestSuite) seedPrices() {
	for _, p := range []struct {
		title string
		price int64
	}{{"apple", 10}, {"banana", 5}, {"cherry", 20}} {
		s.factory.CreateRow(s.schema, map[string]schematic.FieldValue{
			"title": schematic.TextField(p.title),
			"price": schematic.NumberField(schematic.IntNumber(p.price)),
		})
	}
}

func titles(rows []Row) []string {
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, row["title"].AsText())
	}
	return out
}

func (s *DataServiceTestSuite) TestFind_过滤与排序() {
	s.seedPrices()

	rows, err := s.service.Find(s.ctx, s.schema, QueryOptions{
		Filters: []schematic.SchemaFilter{{Field: "price", Condition: schematic.ConditionGreater, Value: schematic.IntValue(6)}},
		Sort:    &schematic.DefaultSort{Field: "price", Order: schematic.SortAsc},
	})
	s.Require().NoError(err)
	s.Equal([]string{"apple", "cherry"}, titles(rows))
	s.Equal(schematic.IntValue(10), rows[0]["price"])

	rows, err = s.service.Find(s.ctx, s.schema, QueryOptions{
		Sort: &schematic.DefaultSort{Field: "price", Order: schematic.SortDesc},
	})
	s.Require().NoError(err)
	s.Equal([]string{"cherry", "apple", "banana"}, titles(rows))
}

func (s *DataServiceTestSuite) TestFind_分页与计数() {
	s.seedPrices()

	opts := QueryOptions{
		Sort:   &schematic.DefaultSort{Field: "price", Order: schematic.SortAsc},
		Offset: 1,
		Limit:  1,
	}
	rows, total, err := s.service.Query(s.ctx, s.schema, opts)
	s.Require().NoError(err)
	s.Equal([]string{"apple"}, titles(rows))
	s.Equal(int64(3), total)

	count, err := s.service.Count(s.ctx, s.schema, QueryOptions{
		Filters: []schematic.SchemaFilter{{Field: "price", Condition: schematic.ConditionLessOrEqual, Value: schematic.TextValue("10")}},
	})
	s.Require().NoError(err)
	s.Equal(int64(2), count)
}

func (s *DataServiceTestSuite) TestFind_不等于包含空值且空值排在最后() {
	s.seedPrices()
	s.factory.CreateRow(s.schema, map[string]schematic.FieldValue{"title": schematic.TextField("durian")})

	rows, err := s.service.Find(s.ctx, s.schema, QueryOptions{
		Filters: []schematic.SchemaFilter{{Field: "price", Condition: schematic.ConditionNotEqual, Value: schematic.IntValue(10)}},
		Sort:    &schematic.DefaultSort{Field: "price", Order: schematic.SortAsc},
	})
	s.Require().NoError(err)
	s.Equal([]string{"banana", "cherry", "durian"}, titles(rows))

	rows, err = s.service.Find(s.ctx, s.schema, QueryOptions{
		Sort: &schematic.DefaultSort{Field: "price", Order: schematic.SortDesc},
	})
	s.Require().NoError(err)
	s.Equal("durian", titles(rows)[3])
}

func (s *DataServiceTestSuite) TestFind_区间与包含() {
	s.seedPrices()

	rows, err := s.service.Find(s.ctx, s.schema, QueryOptions{
		Filters: []schematic.SchemaFilter{{
			Field:     "price",
			Condition: schematic.ConditionBetween,
			Value:     schematic.ListNumberValue(schematic.IntNumber(5), schematic.IntNumber(10)),
		}},
		Sort: &schematic.DefaultSort{Field: "price", Order: schematic.SortAsc},
	})
	s.Require().NoError(err)
	s.Equal([]string{"banana", "apple"}, titles(rows))

	rows, err = s.service.Find(s.ctx, s.schema, QueryOptions{
		Filters: []schematic.SchemaFilter{{Field: "title", Condition: schematic.ConditionContains, Value: schematic.TextValue("AN")}},
	})
	s.Require().NoError(err)
	s.Equal([]string{"banana"}, titles(rows))

	rows, err = s.service.Find(s.ctx, s.schema, QueryOptions{
		Filters: []schematic.SchemaFilter{{Field: "title", Condition: schematic.ConditionDoesNotContain, Value: schematic.TextValue("an")}},
		Sort:    &schematic.DefaultSort{Field: "title", Order: schematic.SortAsc},
	})
	s.Require().NoError(err)
	s.Equal([]string{"apple", "cherry"}, titles(rows))
}

func (s *DataServiceTestSuite) TestFind_通配符与注入值按字面匹配() {
	s.factory.CreateRow(s.schema, map[string]schematic.FieldValue{"title": schematic.TextField("100% cotton")})
	s.factory.CreateRow(s.schema, map[string]schematic.FieldValue{"title": schematic.TextField("1000 cotton")})

	rows, err := s.service.Find(s.ctx, s.schema, QueryOptions{
		Filters: []schematic.SchemaFilter{{Field: "title", Condition: schematic.ConditionContains, Value: schematic.TextValue("0%")}},
	})
	s.Require().NoError(err)
	s.Equal([]string{"100% cotton"}, titles(rows))

	rows, err = s.service.Find(s.ctx, s.schema, QueryOptions{
		Filters: []schematic.SchemaFilter{{Field: "title", Condition: schematic.ConditionEqual, Value: schematic.TextValue(`x' OR '1'='1`)}},
	})
	s.Require().NoError(err)
	s.Empty(rows)

	_, err = s.service.Find(s.ctx, s.schema, QueryOptions{Search: `'; DROP TABLE schema_data; --`})
	s.Require().NoError(err)
	s.True(s.testDB.DB.Migrator().HasTable(&models.SchemaDataModel{}))
}

func (s *DataServiceTestSuite) TestFind_关键字搜索主字段与行ID() {
	s.seedPrices()
	row := s.factory.CreateRow(s.schema, map[string]schematic.FieldValue{"title": schematic.TextField("zucchini")})

	rows, err := s.service.Find(s.ctx, s.schema, QueryOptions{Search: "CHER"})
	s.Require().NoError(err)
	s.Equal([]string{"cherry"}, titles(rows))

	rows, err = s.service.Find(s.ctx, s.schema, QueryOptions{Search: row.PublicID.String()[24:]})
	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	s.Equal(schematic.TextValue(row.PublicID.String()), rows[0][string(schematic.KeyID)])
}

func (s *DataServiceTestSuite) TestFind_默认排序与指定列() {
	s.seedPrices()
	s.schema.DefaultSort = &schematic.DefaultSort{Field: "title", Order: schematic.SortDesc}

	rows, err := s.service.Find(s.ctx, s.schema, QueryOptions{Columns: []string{"title"}})
	s.Require().NoError(err)
	s.Equal([]string{"cherry", "banana", "apple"}, titles(rows))
	s.Len(rows[0], 1)
}

func (s *DataServiceTestSuite) TestFind_默认排序字段已删除时忽略() {
	s.seedPrices()
	s.schema.DefaultSort = &schematic.DefaultSort{Field: "price", Order: schematic.SortDesc}
	price := s.schema.Fields["price"]
	price.IsDeleted = true
	s.schema.Fields["price"] = price

	rows, err := s.service.Find(s.ctx, s.schema, QueryOptions{Limit: 50})
	s.Require().NoError(err)
	s.Equal([]string{"apple", "banana", "cherry"}, titles(rows))

	_, err = s.service.Find(s.ctx, s.schema, QueryOptions{Sort: &schematic.DefaultSort{Field: "price"}})
	s.ErrorIs(err, schematic.ErrColumnNotFound)
}

func (s *DataServiceTestSuite) TestCreateRow_写入后读取() {
	published := time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC)
	created, err := s.service.CreateRow(s.ctx, s.schema, map[string]schematic.SimpleValue{
		"title":     schematic.TextValue("Widget"),
		"price":     schematic.TextValue("12.5"),
		"active":    schematic.TextValue("on"),
		"published": schematic.TextValue("2024-06-01T10:30:00"),
		"extras[]":  schematic.ListStringValue("a", "b"),
	})
	s.Require().NoError(err)

	id, err := uuid.Parse(created[string(schematic.KeyID)].AsText())
	s.Require().NoError(err)
	s.Equal(byte(7), byte(id.Version()))

	row, err := s.service.GetRow(s.ctx, s.schema, id, nil)
	s.Require().NoError(err)
	s.Equal(schematic.TextValue("Widget"), row["title"])
	s.Equal(schematic.FloatValue(12.5), row["price"])
	s.Equal(schematic.BoolValue(true), row["active"])
	s.Equal(schematic.DateTimeValue(published), row["published"])
	s.Equal(schematic.ListStringValue("a", "b"), row["extras[]"])
	s.Equal(schematic.TextValue(models.OwnerPlaceholder.String()), row[string(schematic.KeyOwner)])
	s.Contains(row, string(schematic.KeyCreatedAt))
}

func (s *DataServiceTestSuite) TestCreateRow_拒绝未知字段与系统字段() {
	_, err := s.service.CreateRow(s.ctx, s.schema, map[string]schematic.SimpleValue{"nope": schematic.TextValue("x")})
	s.ErrorIs(err, schematic.ErrColumnNotFound)

	_, err = s.service.CreateRow(s.ctx, s.schema, map[string]schematic.SimpleValue{"_id": schematic.TextValue("x")})
	s.ErrorIs(err, schematic.ErrSystemFieldImmutable)

	_, err = s.service.CreateRow(s.ctx, s.schema, map[string]schematic.SimpleValue{"price": schematic.BoolValue(true)})
	s.ErrorIs(err, schematic.ErrTypeMismatch)

	count, err := s.service.Count(s.ctx, s.schema, QueryOptions{})
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *DataServiceTestSuite) TestCreateRow_非有限数字为类型错误() {
	_, err := s.service.CreateRow(s.ctx, s.schema, map[string]schematic.SimpleValue{
		"price": schematic.TextValue("NaN"),
	})
	s.ErrorIs(err, schematic.ErrTypeMismatch)
	s.NotContains(err.Error(), "sql:")

	count, err := s.service.Count(s.ctx, s.schema, QueryOptions{})
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *DataServiceTestSuite) TestUpdateField_设置与清除() {
	row := s.factory.CreateRow(s.schema, map[string]schematic.FieldValue{"title": schematic.TextField("old")})

	value := schematic.TextValue("new")
	s.Require().NoError(s.service.UpdateField(s.ctx, s.schema, row.PublicID, "title", &value))
	got, err := s.service.GetRow(s.ctx, s.schema, row.PublicID, nil)
	s.Require().NoError(err)
	s.Equal(schematic.TextValue("new"), got["title"])

	price := schematic.IntValue(3)
	s.Require().NoError(s.service.UpdateField(s.ctx, s.schema, row.PublicID, "price", &price))
	got, err = s.service.GetRow(s.ctx, s.schema, row.PublicID, nil)
	s.Require().NoError(err)
	s.Equal(schematic.TextValue("new"), got["title"])
	s.Equal(schematic.IntValue(3), got["price"])

	s.Require().NoError(s.service.UpdateField(s.ctx, s.schema, row.PublicID, "title", nil))
	got, err = s.service.GetRow(s.ctx, s.schema, row.PublicID, nil)
	s.Require().NoError(err)
	s.NotContains(got, "title")

	err = s.service.UpdateField(s.ctx, s.schema, row.PublicID, "title", nil)
	s.ErrorIs(err, models.ErrFieldValueMissing)
}

func (s *DataServiceTestSuite) TestUpdateField_错误() {
	row := s.factory.CreateRow(s.schema, nil)
	value := schematic.TextValue("x")

	s.ErrorIs(s.service.UpdateField(s.ctx, s.schema, row.PublicID, "_createdAt", &value), schematic.ErrSystemFieldImmutable)
	s.ErrorIs(s.service.UpdateField(s.ctx, s.schema, row.PublicID, "missing", &value), schematic.ErrColumnNotFound)
	s.ErrorIs(s.service.UpdateField(s.ctx, s.schema, uuid.New(), "title", &value), ErrRowNotFound)
}

func (s *DataServiceTestSuite) TestDuplicateRow() {
	row := s.factory.CreateRow(s.schema, map[string]schematic.FieldValue{
		"title": schematic.TextField("orig"),
		"price": schematic.NumberField(schematic.IntNumber(9)),
	})

	dup, err := s.service.DuplicateRow(s.ctx, s.schema, row.PublicID)
	s.Require().NoError(err)
	s.NotEqual(row.PublicID.String(), dup[string(schematic.KeyID)].AsText())
	s.Equal(schematic.TextValue("orig"), dup["title"])
	s.Equal(schematic.IntValue(9), dup["price"])

	count, err := s.service.Count(s.ctx, s.schema, QueryOptions{})
	s.Require().NoError(err)
	s.Equal(int64(2), count)
}

func (s *DataServiceTestSuite) TestDeleteRow_软删除后不可见() {
	s.seedPrices()
	row := s.factory.CreateRow(s.schema, map[string]schematic.FieldValue{"title": schematic.TextField("gone")})

	s.Require().NoError(s.service.DeleteRow(s.ctx, s.schema, row.PublicID))

	_, err := s.service.GetRow(s.ctx, s.schema, row.PublicID, nil)
	s.ErrorIs(err, ErrRowNotFound)
	s.ErrorIs(s.service.DeleteRow(s.ctx, s.schema, row.PublicID), ErrRowNotFound)

	rows, err := s.service.Find(s.ctx, s.schema, QueryOptions{Search: "gone"})
	s.Require().NoError(err)
	s.Empty(rows)

	var raw int64
	s.Require().NoError(s.testDB.DB.Unscoped().Model(&models.SchemaDataModel{}).Where("public_id = ?", row.PublicID.String()).Count(&raw).Error)
	s.Equal(int64(1), raw)

	count, err := s.service.CountByAddon(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal(int64(3), count)
}

func (s *DataServiceTestSuite) TestIDsFromPublicIDs() {
	a := s.factory.CreateRow(s.schema, nil)
	b := s.factory.CreateRow(s.schema, nil)

	ids, err := s.service.IDsFromPublicIDs(s.ctx, s.schema.ID, []uuid.UUID{a.PublicID, b.PublicID, uuid.New()})
	s.Require().NoError(err)
	s.Equal(map[uuid.UUID]int64{a.PublicID: a.ID, b.PublicID: b.ID}, ids)
}

func (s *DataServiceTestSuite) TestPurgeExpired() {
	s.seedPrices()

	purged, err := s.service.PurgeExpired(s.ctx, s.schema, time.Now().Add(-time.Hour))
	s.Require().NoError(err)
	s.Zero(purged)

	purged, err = s.service.PurgeExpired(s.ctx, s.schema, time.Now().Add(time.Hour))
	s.Require().NoError(err)
	s.Equal(int64(3), purged)
}

func (s *DataServiceTestSuite) TestAddonStore_转发到插件() {
	addon := &testutil.MockAddonQuerier{}
	service := NewDataService(s.testDB.DB, addon)
	schema := s.factory.CreateSchema(1, testutil.WithStore(models.StoreAddon))

	filters := []schematic.SchemaFilter{{Field: "title", Condition: schematic.ConditionEqual, Value: schematic.TextValue("a")}}
	addon.On("QueryRows", mock.Anything, int64(1), schema.Name, filters, (*schematic.DefaultSort)(nil), 0, 50).
		Return([]map[string]schematic.SimpleValue{{"title": schematic.TextValue("a"), "n": schematic.IntValue(1)}}, nil)
	addon.On("CountRows", mock.Anything, int64(1), schema.Name, filters).Return(int64(7), nil)

	rows, total, err := service.Query(s.ctx, schema, QueryOptions{Filters: filters, Limit: 50, Columns: []string{"title"}})
	s.Require().NoError(err)
	s.Equal(int64(7), total)
	s.Equal([]Row{{"title": schematic.TextValue("a")}}, rows)
	addon.AssertExpectations(s.T())

	_, err = service.CreateRow(s.ctx, schema, nil)
	s.ErrorIs(err, ErrAddonStoreReadOnly)

	_, err = NewDataService(s.testDB.DB, nil).Find(s.ctx, schema, QueryOptions{})
	s.ErrorIs(err, ErrAddonUnavailable)
}

func TestDataServiceSuite(t *testing.T) {
	suite.Run(t, new(DataServiceTestSuite))
}

// 完整流程：建表、加列、写入、读取
func TestDataService_建表加列写入读取(t *testing.T) {
	testDB := testutil.NewTestDB()
	defer testDB.Close()
	ctx := context.Background()

	schemas := NewSchemaService(testDB.DB, nil)
	data := NewDataService(testDB.DB, nil)

	schema, err := schemas.CreateSchema(ctx, CreateSchemaRequest{AddonID: 9, Name: "books", DisplayName: "Books"})
	require.NoError(t, err)
	schema, err = schemas.AddColumns(ctx, 9, "books", []ColumnSpec{
		{ID: "name", DisplayName: "Name", FieldType: schematic.FieldText},
		{ID: "pages", DisplayName: "Pages", FieldType: schematic.FieldNumber},
	})
	require.NoError(t, err)

	created, err := data.CreateRow(ctx, schema, map[string]schematic.SimpleValue{
		"name":  schematic.TextValue("Go"),
		"pages": schematic.IntValue(300),
	})
	require.NoError(t, err)

	id := uuid.MustParse(created[string(schematic.KeyID)].AsText())
	row, err := data.GetRow(ctx, schema, id, []string{"name", "pages"})
	require.NoError(t, err)
	assert.Equal(t, Row{"name": schematic.TextValue("Go"), "pages": schematic.IntValue(300)}, row)

	schema, err = schemas.DeleteColumn(ctx, 9, "books", "pages")
	require.NoError(t, err)
	row, err = data.GetRow(ctx, schema, id, nil)
	require.NoError(t, err)
	assert.NotContains(t, row, "pages")
}
