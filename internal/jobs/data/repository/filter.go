package repository

import (
	"github.com/skillconnect/jobcore/internal/jobs/structs"
	"github.com/skillconnect/jobcore/internal/sanitize"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EarthRadiusKm is the radius $centerSphere distances are measured against.
const EarthRadiusKm = 6378.1

// FindFilter renders f for find queries. Proximity uses $near, which also
// orders results nearest first.
func FindFilter(f JobFilter) bson.M {
	m := facets(f)
	if f.Near != nil {
		m["location"] = bson.M{
			"$near": bson.M{
				"$geometry":    point(f.Near.Lon, f.Near.Lat),
				"$maxDistance": f.Near.RadiusKm * 1000,
			},
		}
	}
	m["isActive"] = true
	return m
}

// CountFilter renders f for counting. $near is not allowed in counts, so the
// radius is expressed with $geoWithin/$centerSphere.
func CountFilter(f JobFilter) bson.M {
	m := facets(f)
	if f.Near != nil {
		m["location"] = bson.M{
			"$geoWithin": bson.M{
				"$centerSphere": bson.A{
					bson.A{f.Near.Lon, f.Near.Lat},
					f.Near.RadiusKm / EarthRadiusKm,
				},
			},
		}
	}
	m["isActive"] = true
	return m
}

func facets(f JobFilter) bson.M {
	m := bson.M{}
	if f.Category != "" {
		m["category"] = f.Category
	}
	if f.JobType != "" {
		m["jobType"] = f.JobType
	}
	if f.Status != "" {
		m["status"] = f.Status
	}
	if f.Employer != "" {
		m["employer"] = f.Employer
	}
	if f.City != "" {
		m["location.city"] = containsPattern(f.City)
	}
	if len(f.Skills) > 0 {
		patterns := make(bson.A, 0, len(f.Skills))
		for _, s := range f.Skills {
			patterns = append(patterns, containsPattern(s))
		}
		m["skills"] = bson.M{"$in": patterns}
	}
	return m
}

// containsPattern is a case-insensitive literal substring match.
func containsPattern(s string) primitive.Regex {
	return primitive.Regex{Pattern: sanitize.EscapeRegex(s), Options: "i"}
}

func point(lon, lat float64) bson.M {
	return bson.M{"type": structs.PointType, "coordinates": bson.A{lon, lat}}
}

// SortDoc renders a sort key with _id as a tie breaker so pages are stable.
func SortDoc(k sanitize.SortKey) bson.D {
	if k.Field == "" {
		return nil
	}
	dir := 1
	if k.Desc {
		dir = -1
	}
	d := bson.D{{Key: k.Field, Value: dir}}
	if k.Field != "_id" {
		d = append(d, bson.E{Key: "_id", Value: dir})
	}
	return d
}
