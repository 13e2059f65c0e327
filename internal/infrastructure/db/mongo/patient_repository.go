package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/psyclinic/clinic-api/internal/core/domain"
)

const collectionPatients = "patients"

type patientDoc struct {
	ID               primitive.ObjectID       `bson:"_id,omitempty"`
	FirstName        string                   `bson:"first_name"`
	LastName         string                   `bson:"last_name"`
	Email            string                   `bson:"email"`
	Phone            string                   `bson:"phone"`
	DateOfBirth      time.Time                `bson:"date_of_birth"`
	Gender           string                   `bson:"gender"`
	Address          *domain.Address          `bson:"address,omitempty"`
	EmergencyContact *domain.EmergencyContact `bson:"emergency_contact,omitempty"`
	InsuranceInfo    *domain.InsuranceInfo    `bson:"insurance_info,omitempty"`
	UserID           *primitive.ObjectID      `bson:"user_id,omitempty"`
	CreatedAt        time.Time                `bson:"created_at"`
	UpdatedAt        time.Time                `bson:"updated_at"`
}

func toPatientDoc(p *domain.Patient) patientDoc {
	doc := patientDoc{
		FirstName:        p.FirstName,
		LastName:         p.LastName,
		Email:            p.Email,
		Phone:            p.Phone,
		DateOfBirth:      p.DateOfBirth,
		Gender:           string(p.Gender),
		Address:          p.Address,
		EmergencyContact: p.EmergencyContact,
		InsuranceInfo:    p.InsuranceInfo,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
	if oid, err := primitive.ObjectIDFromHex(p.UserID); err == nil {
		doc.UserID = &oid
	}
	return doc
}

func (d patientDoc) toDomain() *domain.Patient {
	p := &domain.Patient{
		ID:               d.ID.Hex(),
		FirstName:        d.FirstName,
		LastName:         d.LastName,
		Email:            d.Email,
		Phone:            d.Phone,
		DateOfBirth:      d.DateOfBirth,
		Gender:           domain.Gender(d.Gender),
		Address:          d.Address,
		EmergencyContact: d.EmergencyContact,
		InsuranceInfo:    d.InsuranceInfo,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
	if d.UserID != nil {
		p.UserID = d.UserID.Hex()
	}
	return p
}

func patientIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
	}
}

type PatientRepository struct {
	col *mongo.Collection
}

func NewPatientRepository(db *mongo.Database) *PatientRepository {
	return &PatientRepository{col: db.Collection(collectionPatients)}
}

func (r *PatientRepository) Create(ctx context.Context, p *domain.Patient) (*domain.Patient, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toPatientDoc(p)
	doc.ID = primitive.NewObjectID()
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, translate(err, "patient")
	}
	return doc.toDomain(), nil
}

func (r *PatientRepository) FindByID(ctx context.Context, id string) (*domain.Patient, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc patientDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPatientNotFound
		}
		return nil, translate(err, "patient")
	}
	return doc.toDomain(), nil
}

// FindByIDs loads the given patients in one query. Unknown or malformed ids
// are absent from the result.
func (r *PatientRepository) FindByIDs(ctx context.Context, ids []string) (map[string]*domain.Patient, error) {
	oids := objectIDs(ids)
	out := make(map[string]*domain.Patient, len(oids))
	if len(oids) == 0 {
		return out, nil
	}

	patients, err := r.find(ctx, bson.M{"_id": bson.M{"$in": oids}}, nil)
	if err != nil {
		return nil, err
	}
	for _, p := range patients {
		out[p.ID] = p
	}
	return out, nil
}

// List returns every patient, newest first.
func (r *PatientRepository) List(ctx context.Context) ([]*domain.Patient, error) {
	return r.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
}

func (r *PatientRepository) Update(ctx context.Context, p *domain.Patient) (*domain.Patient, error) {
	oid, err := objectID(p.ID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toPatientDoc(p)
	doc.ID = oid
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": oid}, doc)
	if err != nil {
		return nil, translate(err, "patient")
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrPatientNotFound
	}
	return doc.toDomain(), nil
}

func (r *PatientRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return translate(err, "patient")
	}
	if res.DeletedCount == 0 {
		return domain.ErrPatientNotFound
	}
	return nil
}

func (r *PatientRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.Patient, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, translate(err, "patient")
	}
	defer cur.Close(ctx)

	var docs []patientDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, translate(err, "patient")
	}
	out := make([]*domain.Patient, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}

// Clear removes every patient. Used by the seed command only.
func (r *PatientRepository) Clear(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.DeleteMany(ctx, bson.M{})
	return translate(err, "patient")
}
