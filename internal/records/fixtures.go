package records

import (
	"time"

	"github.com/sells-group/property-intel/internal/filter"
	"github.com/sells-group/property-intel/internal/model"
	"github.com/sells-group/property-intel/internal/savedsearch"
)

// Dataset is a complete seed for an empty deployment.
type Dataset struct {
	Properties    []model.Property
	Owners        []*model.Owner
	Users         []model.User
	Activity      []model.ActivityEntry
	Sources       []model.DataSource
	SavedSearches []savedsearch.SavedSearch
}

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

// Fixtures returns the demo dataset. Every call builds fresh values.
func Fixtures() Dataset {
	smith := &model.Owner{
		ID:          "owner-001",
		Name:        "John Smith",
		Kind:        model.OwnerIndividual,
		NetWorth:    15000000,
		Confidence:  0.85,
		PropertyIDs: []string{"property-001", "property-003"},
		LastUpdated: ts("2025-03-15T12:30:45Z"),
		Sources: []model.SourceEntry{
			{Name: "Property Records", LastUpdated: ts("2025-03-15T12:30:45Z"), Confidence: 0.92},
			{Name: "Credit Bureau", LastUpdated: ts("2025-02-28T09:14:22Z"), Confidence: 0.78},
		},
	}
	ocean := &model.Owner{
		ID:          "owner-002",
		Name:        "Oceanview Holdings LLC",
		Kind:        model.OwnerCompany,
		NetWorth:    98000000,
		Confidence:  0.92,
		PropertyIDs: []string{"property-002", "property-004", "property-005"},
		LastUpdated: ts("2025-03-22T14:25:12Z"),
		Sources: []model.SourceEntry{
			{Name: "Corporate Filings", LastUpdated: ts("2025-03-22T14:25:12Z"), Confidence: 0.95},
			{Name: "Business Credit", LastUpdated: ts("2025-03-01T11:08:33Z"), Confidence: 0.89},
		},
	}

	props := []model.Property{
		{
			ID: "property-001", Street: "123 Main Street", City: "New York", State: "NY", Zip: "10001",
			Lat: 40.7128, Lng: -74.006, Category: model.CategoryResidential, Size: 2500, Value: 1850000,
			LastSale:  model.Sale{Date: ts("2023-05-12T00:00:00Z"), Price: 1750000},
			YearBuilt: 1998, Owner: smith,
			Features: []string{"4 Bedrooms", "3 Bathrooms", "Garage", "Swimming Pool"},
		},
		{
			ID: "property-002", Street: "456 Market Street", City: "San Francisco", State: "CA", Zip: "94103",
			Lat: 37.7749, Lng: -122.4194, Category: model.CategoryCommercial, Size: 15000, Value: 12500000,
			LastSale:  model.Sale{Date: ts("2022-08-03T00:00:00Z"), Price: 11000000},
			YearBuilt: 2005, Owner: ocean,
			Features: []string{"Office Space", "3 Floors", "Parking Garage", "Conference Rooms"},
		},
		{
			ID: "property-003", Street: "789 Park Avenue", City: "New York", State: "NY", Zip: "10021",
			Lat: 40.7725, Lng: -73.9630, Category: model.CategoryResidential, Size: 4200, Value: 6500000,
			LastSale:  model.Sale{Date: ts("2021-11-15T00:00:00Z"), Price: 5800000},
			YearBuilt: 1912, Owner: smith,
			Features: []string{"5 Bedrooms", "4.5 Bathrooms", "Doorman", "Terrace"},
		},
		{
			ID: "property-004", Street: "101 Tech Street", City: "San Francisco", State: "CA", Zip: "94105",
			Lat: 37.7850, Lng: -122.3980, Category: model.CategoryCommercial, Size: 25000, Value: 28000000,
			LastSale:  model.Sale{Date: ts("2022-03-20T00:00:00Z"), Price: 25000000},
			YearBuilt: 2018, Owner: ocean,
			Features: []string{"Modern Office", "5 Floors", "Cafeteria", "Green Building Certified"},
		},
		{
			ID: "property-005", Street: "222 Jefferson Avenue", City: "Miami", State: "FL", Zip: "33139",
			Lat: 25.7617, Lng: -80.1918, Category: model.CategoryMixedUse, Size: 18000, Value: 19500000,
			LastSale:  model.Sale{Date: ts("2023-01-10T00:00:00Z"), Price: 17800000},
			YearBuilt: 2010, Owner: ocean,
			Features: []string{"Retail First Floor", "Residential Upper Floors", "Beachfront View", "Pool Deck"},
		},
	}

	return Dataset{
		Properties: props,
		Owners:     []*model.Owner{smith, ocean},
		Users: []model.User{
			{ID: "user-001", Email: "john.doe@acme.com", FullName: "John Doe", Role: model.RoleAdmin},
			{ID: "user-002", Email: "jane.smith@acme.com", FullName: "Jane Smith", Role: model.RoleAnalyst},
			{ID: "user-003", Email: "michael.johnson@acme.com", FullName: "Michael Johnson", Role: model.RoleViewer},
		},
		Activity: []model.ActivityEntry{
			{
				ID: "activity-001", UserID: "user-001", UserName: "John Doe", UserRole: string(model.RoleAdmin),
				Action: model.ActionViewedProperty, Details: "Viewed property details for 123 Main Street",
				Timestamp: ts("2025-04-23T14:35:12Z"), IP: "192.168.1.101",
			},
			{
				ID: "activity-002", UserID: "user-002", UserName: "Jane Smith", UserRole: string(model.RoleAnalyst),
				Action: model.ActionExportedData, Details: "Exported property data for High Value SF Properties search",
				Timestamp: ts("2025-04-23T11:22:04Z"), IP: "192.168.1.102",
			},
			{
				ID: "activity-003", UserID: "user-003", UserName: "Michael Johnson", UserRole: string(model.RoleViewer),
				Action: model.ActionCreatedSearch, Details: "Created and saved new search: Miami Properties",
				Timestamp: ts("2025-04-22T16:05:45Z"), IP: "192.168.1.103",
			},
			{
				ID: "activity-004", UserID: "user-001", UserName: "John Doe", UserRole: string(model.RoleAdmin),
				Action: model.ActionAddedUser, Details: "Added new user: sarah.parker@acme.com with Analyst role",
				Timestamp: ts("2025-04-22T10:15:32Z"), IP: "192.168.1.101",
			},
			{
				ID: "activity-005", UserID: "user-002", UserName: "Jane Smith", UserRole: string(model.RoleAnalyst),
				Action: model.ActionGeneratedReport, Details: "Generated property valuation report for San Francisco market",
				Timestamp: ts("2025-04-21T14:45:21Z"), IP: "192.168.1.102",
			},
		},
		Sources: []model.DataSource{
			{ID: "source-001", Name: "County Property Records", Type: "Property Data", LastSync: ts("2025-04-22T23:45:12Z"), RecordCount: 15420, Status: model.SourceActive, Confidence: 0.95},
			{ID: "source-002", Name: "Credit Bureau API", Type: "Financial Data", LastSync: ts("2025-04-21T12:30:45Z"), RecordCount: 12250, Status: model.SourceActive, Confidence: 0.82},
			{ID: "source-003", Name: "Business Registry", Type: "Company Data", LastSync: ts("2025-04-20T08:15:33Z"), RecordCount: 8753, Status: model.SourceActive, Confidence: 0.88},
			{ID: "source-004", Name: "Tax Assessment Database", Type: "Property Value", LastSync: ts("2025-04-19T15:22:08Z"), RecordCount: 18650, Status: model.SourceActive, Confidence: 0.91},
		},
		SavedSearches: []savedsearch.SavedSearch{
			{
				ID: "search-002", Name: "NY Residential Properties", CreatedAt: ts("2025-03-27T09:12:14Z"), CreatedBy: "user-002",
				Filters: filter.Predicate{
					Categories: []model.Category{model.CategoryResidential},
					SizeMin:    filter.Ptr(int64(2000)),
					City:       filter.Ptr("New York"),
					State:      filter.Ptr("NY"),
				},
			},
			{
				ID: "search-001", Name: "High Value SF Properties", CreatedAt: ts("2025-04-01T15:30:22Z"), CreatedBy: "user-001",
				Filters: filter.Predicate{
					Categories: []model.Category{model.CategoryCommercial, model.CategoryMixedUse},
					ValueMin:   filter.Ptr(int64(10000000)),
					City:       filter.Ptr("San Francisco"),
					State:      filter.Ptr("CA"),
				},
			},
		},
	}
}
