package export

import (
	"context"
	"errors"
	"image"
	"net/http/httptest"
	"regexp"
	"testing"

	"map-atlas/core/mapdata"
	"map-atlas/core/raster"
	"map-atlas/core/report"
	"map-atlas/core/storage"
	"map-atlas/core/storage/mocks"
	"map-atlas/core/store"
	"map-atlas/feature/atlas"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type stubSource struct {
	snap *store.Snapshot
}

func (s stubSource) Current() (*store.Snapshot, error) {
	if s.snap == nil {
		return nil, atlas.ErrNotLoaded
	}
	return s.snap, nil
}

// snapshot has a land province in state 5 and region 1, a sea province in
// neither, FRA with a colour owning the state and ENG without one.
func snapshot() *store.Snapshot {
	m := mapdata.NewModel()
	m.Provinces[1] = &mapdata.Province{ID: 1, Color: mapdata.RGB{R: 10, G: 10, B: 10}, Type: mapdata.TypeLand, VictoryPoints: 10}
	m.Provinces[2] = &mapdata.Province{ID: 2, Color: mapdata.RGB{R: 0, G: 0, B: 200}, Type: mapdata.TypeSea}
	m.States[5] = &mapdata.State{ID: 5, Name: "STATE_5", Owner: "FRA", Provinces: []int{1}, Manpower: 1000}
	m.Regions[1] = &mapdata.StrategicRegion{ID: 1, Name: "REGION_1", Provinces: []int{1}}
	m.Countries["FRA"] = &mapdata.Country{Tag: "FRA", Color: mapdata.RGB{R: 57, G: 160, B: 101}, HasColor: true}
	m.Countries["ENG"] = &mapdata.Country{Tag: "ENG"}
	m.Index(report.New())

	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	return &store.Snapshot{
		Seq:          7,
		Model:        m,
		Localisation: map[string]string{"STATE_5": "Paris", "FRA": "France"},
		Views:        map[raster.View]*image.RGBA{raster.ViewProvince: img},
		ViewErrors:   map[raster.View]error{raster.ViewOwner: errors.New("country XXX has no colour")},
		Report:       report.New(),
	}
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}
	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}
	return gormDB, mock
}

func TestValidName(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"latest", true},
		{"v1.2_release-3", true},
		{"2024", true},
		{"", false},
		{"Latest", false},
		{"-dash", false},
		{"a/b", false},
		{"..", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.valid, ValidName(tt.name), tt.name)
	}
}

func TestBuildRows(t *testing.T) {
	snap := snapshot()
	rows := BuildRows(snap.Model, snap.Localise)

	require.Len(t, rows.Provinces, 2)
	assert.Equal(t, 1, rows.Provinces[0].ID)
	require.NotNil(t, rows.Provinces[0].StateID)
	assert.Equal(t, 5, *rows.Provinces[0].StateID)
	require.NotNil(t, rows.Provinces[0].RegionID)
	assert.Equal(t, 1, *rows.Provinces[0].RegionID)
	assert.Equal(t, 10, rows.Provinces[0].VictoryPoints)
	assert.Nil(t, rows.Provinces[1].StateID)
	assert.Nil(t, rows.Provinces[1].RegionID)

	require.Len(t, rows.States, 1)
	assert.Equal(t, "Paris", rows.States[0].LocalisedName)
	assert.Equal(t, 1, rows.States[0].Provinces)

	require.Len(t, rows.Regions, 1)
	assert.Equal(t, "REGION_1", rows.Regions[0].LocalisedName)

	require.Len(t, rows.Countries, 2)
	assert.Equal(t, "ENG", rows.Countries[0].Tag)
	assert.False(t, rows.Countries[0].HasColor)
	assert.Empty(t, rows.Countries[0].Color)
	assert.Equal(t, "FRA", rows.Countries[1].Tag)
	assert.Equal(t, "France", rows.Countries[1].LocalisedName)
	assert.Equal(t, 1, rows.Countries[1].States)
}

func TestService_ToStorage(t *testing.T) {
	client := new(mocks.Client)
	cfg := storage.Config{Bucket: "atlas", Region: "eu-west-1"}
	svc := NewService(stubSource{snap: snapshot()}, client, cfg, nil, zap.NewNop())

	client.On("BucketExists", mock.Anything, "atlas").Return(false, nil)
	client.On("MakeBucket", mock.Anything, "atlas", minio.MakeBucketOptions{Region: "eu-west-1"}).Return(nil)
	client.On("PutObject", mock.Anything, "atlas", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, nil)
	objs, err := objects(snapshot(), "atlas/latest")
	require.NoError(t, err)
	var provincesETag string
	for _, o := range objs {
		if o.key == "atlas/latest/provinces.json" {
			provincesETag = o.etag
		}
	}
	require.NotEmpty(t, provincesETag)

	client.On("ListObjects", mock.Anything, "atlas", minio.ListObjectsOptions{Prefix: "atlas/latest/", Recursive: true}).
		Return(mocks.Listing(
			minio.ObjectInfo{Key: "atlas/latest/manifest.json", ETag: `"0000"`},
			minio.ObjectInfo{Key: "atlas/latest/provinces.json", ETag: `"` + provincesETag + `"`},
			minio.ObjectInfo{Key: "atlas/latest/views/old.png"},
		))

	var removed []string
	client.On("RemoveObjects", mock.Anything, "atlas", mock.Anything, minio.RemoveObjectsOptions{}).
		Run(func(args mock.Arguments) {
			for info := range args.Get(2).(<-chan minio.ObjectInfo) {
				removed = append(removed, info.Key)
			}
		}).
		Return(nil)

	res, err := svc.ToStorage(context.Background(), "latest")
	require.NoError(t, err)

	assert.Equal(t, "atlas/latest/", res.Prefix)
	assert.Equal(t, int64(7), res.Seq)
	assert.Contains(t, res.Objects, "atlas/latest/views/province.png")
	assert.Contains(t, res.Objects, "atlas/latest/manifest.json")
	assert.Contains(t, res.Objects, "atlas/latest/countries.json")
	assert.NotContains(t, res.Objects, "atlas/latest/views/owner.png")
	assert.Len(t, res.Objects, 8)
	assert.Len(t, res.Uploaded, 7)
	assert.Contains(t, res.Uploaded, "atlas/latest/manifest.json")
	assert.NotContains(t, res.Uploaded, "atlas/latest/provinces.json")
	assert.Equal(t, 1, res.Unchanged)
	assert.Equal(t, []string{"atlas/latest/views/old.png"}, removed)
	assert.Equal(t, []string{"atlas/latest/views/old.png"}, res.Removed)
	client.AssertNumberOfCalls(t, "PutObject", 7)
	client.AssertExpectations(t)
}

func TestService_ToStorage_Errors(t *testing.T) {
	t.Run("Disabled", func(t *testing.T) {
		svc := NewService(stubSource{snap: snapshot()}, nil, storage.Config{}, nil, zap.NewNop())
		_, err := svc.ToStorage(context.Background(), "latest")
		assert.ErrorIs(t, err, ErrStorageDisabled)
	})

	t.Run("NotLoaded", func(t *testing.T) {
		svc := NewService(stubSource{}, new(mocks.Client), storage.Config{Bucket: "atlas"}, nil, zap.NewNop())
		_, err := svc.ToStorage(context.Background(), "latest")
		assert.ErrorIs(t, err, atlas.ErrNotLoaded)
	})

	t.Run("UploadFails", func(t *testing.T) {
		client := new(mocks.Client)
		svc := NewService(stubSource{snap: snapshot()}, client, storage.Config{Bucket: "atlas"}, nil, zap.NewNop())
		client.On("BucketExists", mock.Anything, "atlas").Return(true, nil)
		client.On("ListObjects", mock.Anything, "atlas", mock.Anything).Return(mocks.Listing())
		client.On("PutObject", mock.Anything, "atlas", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(minio.UploadInfo{}, errors.New("access denied"))

		_, err := svc.ToStorage(context.Background(), "latest")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "access denied")
		client.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
		client.AssertNotCalled(t, "RemoveObjects", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestService_ToDatabase(t *testing.T) {
	db, sqlMock := setupMockDB(t)
	svc := NewService(stubSource{snap: snapshot()}, nil, storage.Config{}, db, zap.NewNop())

	sqlMock.ExpectBegin()
	sqlMock.ExpectExec(regexp.QuoteMeta("INSERT INTO `atlas_provinces`")).WillReturnResult(sqlmock.NewResult(0, 2))
	sqlMock.ExpectExec(regexp.QuoteMeta("DELETE FROM `atlas_provinces` WHERE id NOT IN")).WillReturnResult(sqlmock.NewResult(0, 3))
	sqlMock.ExpectExec(regexp.QuoteMeta("INSERT INTO `atlas_states`")).WillReturnResult(sqlmock.NewResult(0, 1))
	sqlMock.ExpectExec(regexp.QuoteMeta("DELETE FROM `atlas_states`")).WillReturnResult(sqlmock.NewResult(0, 0))
	sqlMock.ExpectExec(regexp.QuoteMeta("INSERT INTO `atlas_regions`")).WillReturnResult(sqlmock.NewResult(0, 1))
	sqlMock.ExpectExec(regexp.QuoteMeta("DELETE FROM `atlas_regions`")).WillReturnResult(sqlmock.NewResult(0, 0))
	sqlMock.ExpectExec(regexp.QuoteMeta("INSERT INTO `atlas_countries`")).WillReturnResult(sqlmock.NewResult(0, 2))
	sqlMock.ExpectExec(regexp.QuoteMeta("DELETE FROM `atlas_countries` WHERE tag NOT IN")).WillReturnResult(sqlmock.NewResult(0, 1))
	sqlMock.ExpectCommit()

	res, err := svc.ToDatabase(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, int64(7), res.Seq)
	assert.Equal(t, 2, res.Upserted["atlas_provinces"])
	assert.Equal(t, 2, res.Upserted["atlas_countries"])
	assert.Equal(t, 3, res.Deleted["atlas_provinces"])
	assert.Equal(t, 1, res.Deleted["atlas_countries"])
	assert.False(t, res.Migrated)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestService_ToDatabase_RollsBack(t *testing.T) {
	db, sqlMock := setupMockDB(t)
	svc := NewService(stubSource{snap: snapshot()}, nil, storage.Config{}, db, zap.NewNop())

	sqlMock.ExpectBegin()
	sqlMock.ExpectExec(regexp.QuoteMeta("INSERT INTO `atlas_provinces`")).WillReturnError(errors.New("deadlock"))
	sqlMock.ExpectRollback()

	_, err := svc.ToDatabase(context.Background(), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "atlas_provinces")
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestService_VerifyDatabase(t *testing.T) {
	db, sqlMock := setupMockDB(t)
	svc := NewService(stubSource{}, nil, storage.Config{}, db, zap.NewNop())

	header := []string{"Field", "Type", "Null", "Key", "Default", "Extra"}
	sqlMock.ExpectQuery(regexp.QuoteMeta("SHOW COLUMNS FROM `atlas_provinces`")).
		WillReturnRows(sqlmock.NewRows(header).
			AddRow("id", "int", "NO", "PRI", nil, "").
			AddRow("color", "varchar(11)", "NO", "", nil, ""))
	for _, table := range []string{"atlas_states", "atlas_regions", "atlas_countries"} {
		sqlMock.ExpectQuery(regexp.QuoteMeta("SHOW COLUMNS FROM `" + table + "`")).
			WillReturnRows(sqlmock.NewRows(header))
	}

	missing, err := svc.VerifyDatabase(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"coastal", "continent", "region_id", "state_id", "terrain", "type", "victory_points"}, missing["atlas_provinces"])
	assert.Contains(t, missing["atlas_countries"], "tag")
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestHandler(t *testing.T) {
	db, _ := setupMockDB(t)

	tests := []struct {
		name   string
		svc    *Service
		method string
		url    string
		status int
	}{
		{"InvalidName", NewService(stubSource{snap: snapshot()}, new(mocks.Client), storage.Config{}, nil, zap.NewNop()), "POST", "/export/storage/BAD", fiber.StatusBadRequest},
		{"StorageDisabled", NewService(stubSource{snap: snapshot()}, nil, storage.Config{}, db, zap.NewNop()), "POST", "/export/storage/latest", fiber.StatusServiceUnavailable},
		{"DatabaseDisabled", NewService(stubSource{snap: snapshot()}, new(mocks.Client), storage.Config{}, nil, zap.NewNop()), "POST", "/export/database", fiber.StatusServiceUnavailable},
		{"NotLoaded", NewService(stubSource{}, nil, storage.Config{}, db, zap.NewNop()), "POST", "/export/database", fiber.StatusServiceUnavailable},
		{"DriftNoTarget", NewService(stubSource{snap: snapshot()}, nil, storage.Config{}, nil, zap.NewNop()), "GET", "/export/drift/latest", fiber.StatusServiceUnavailable},
		{"DriftInvalidName", NewService(stubSource{snap: snapshot()}, nil, storage.Config{}, db, zap.NewNop()), "GET", "/export/drift/UP", fiber.StatusBadRequest},
		{"SchemaDisabled", NewService(stubSource{}, new(mocks.Client), storage.Config{}, nil, zap.NewNop()), "GET", "/export/database/schema", fiber.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			require.NoError(t, NewFeature(tt.svc).Load(app))
			resp, err := app.Test(httptest.NewRequest(tt.method, tt.url, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestFeature_IsEnabled(t *testing.T) {
	db, _ := setupMockDB(t)
	assert.False(t, NewFeature(NewService(stubSource{}, nil, storage.Config{}, nil, zap.NewNop())).IsEnabled())
	assert.True(t, NewFeature(NewService(stubSource{}, new(mocks.Client), storage.Config{}, nil, zap.NewNop())).IsEnabled())
	assert.True(t, NewFeature(NewService(stubSource{}, nil, storage.Config{}, db, zap.NewNop())).IsEnabled())
	assert.Equal(t, "export", NewFeature(NewService(stubSource{}, nil, storage.Config{}, nil, zap.NewNop())).Name())
}

func TestService_Drift(t *testing.T) {
	db, sqlMock := setupMockDB(t)
	client := new(mocks.Client)
	svc := NewService(stubSource{snap: snapshot()}, client, storage.Config{Bucket: "atlas"}, db, zap.NewNop())

	client.On("ListObjects", mock.Anything, "atlas", mock.Anything).
		Return(mocks.Listing(minio.ObjectInfo{Key: "atlas/latest/views/old.png"}))

	sqlMock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `atlas_provinces`")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "color", "type", "coastal", "terrain", "continent", "victory_points", "state_id", "region_id"}).
			AddRow(1, "10,10,10", "land", false, "", 0, 10, 5, 1).
			AddRow(9, "1,1,1", "sea", false, "", 0, 0, nil, nil))
	sqlMock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `atlas_states`")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "owner", "manpower", "provinces"}).
			AddRow(5, "STATE_5", "GER", 1000, 1))
	sqlMock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `atlas_regions`")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	sqlMock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `atlas_countries`")).
		WillReturnRows(sqlmock.NewRows([]string{"tag"}))

	rep, err := svc.Drift(context.Background(), "latest")
	require.NoError(t, err)
	assert.Equal(t, int64(7), rep.Seq)

	require.NotNil(t, rep.Storage)
	assert.Equal(t, 8, rep.Storage.Summary.Missing)
	assert.Equal(t, 1, rep.Storage.Summary.Stale)

	provinces := rep.Tables["atlas_provinces"]
	require.NotNil(t, provinces)
	assert.Equal(t, 1, provinces.Summary.InSync)
	assert.Equal(t, 1, provinces.Summary.Missing)
	assert.Equal(t, 1, provinces.Summary.Stale)

	states := rep.Tables["atlas_states"]
	require.NotNil(t, states)
	require.Len(t, states.Results, 1)
	assert.Contains(t, states.Results[0].Mismatch, "owner: want=FRA have=GER")
	assert.Contains(t, states.Results[0].Mismatch, "localised_name: want=Paris have=")

	assert.Equal(t, 2, rep.Tables["atlas_countries"].Summary.Missing)
	assert.NoError(t, sqlMock.ExpectationsWereMet())

	// A second call within DriftTTL reuses the listings.
	_, err = svc.Drift(context.Background(), "latest")
	require.NoError(t, err)
	client.AssertNumberOfCalls(t, "ListObjects", 1)
}
