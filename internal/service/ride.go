package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/ride-booking/internal/logging"
	"github.com/iliyamo/ride-booking/internal/model"
	"github.com/iliyamo/ride-booking/internal/repository"
	"github.com/iliyamo/ride-booking/internal/validation"
)

// CreateRideInput is the payload of ride creation.  Fares are in minor
// units.
type CreateRideInput struct {
	RouteID   uint64    `json:"route_id" validate:"required"`
	VehicleID uint64    `json:"vehicle_id" validate:"required"`
	DriverID  uint64    `json:"driver_id" validate:"required"`
	FareUSD   int64     `json:"fare_usd" validate:"gt=0"`
	FareSLSH  int64     `json:"fare_slsh" validate:"gt=0"`
	Day       string    `json:"day" validate:"required,oneof=MONDAY TUESDAY WEDNESDAY THURSDAY FRIDAY SATURDAY SUNDAY"`
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
}

// UpdateRideInput holds the fields an administrator may edit.
type UpdateRideInput struct {
	FareUSD   int64     `json:"fare_usd" validate:"gt=0"`
	FareSLSH  int64     `json:"fare_slsh" validate:"gt=0"`
	Day       string    `json:"day" validate:"required,oneof=MONDAY TUESDAY WEDNESDAY THURSDAY FRIDAY SATURDAY SUNDAY"`
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
}

// RideService creates scheduled rides together with their seats.
type RideService struct {
	db        *sql.DB
	routes    *repository.RouteRepo
	vehicles  *repository.VehicleRepo
	users     *repository.UserRepo
	rides     *repository.RideRepo
	seats     *repository.SeatRepo
	validator *validation.Validator
	activity  ActivityRecorder
}

func NewRideService(db *sql.DB, routes *repository.RouteRepo, vehicles *repository.VehicleRepo, users *repository.UserRepo,
	rides *repository.RideRepo, seats *repository.SeatRepo, v *validation.Validator, activity ActivityRecorder) *RideService {
	return &RideService{db: db, routes: routes, vehicles: vehicles, users: users, rides: rides, seats: seats, validator: v, activity: activity}
}

// Create validates the references and inserts the ride and its
// vehicle-capacity seats (numbered from 1, all free) in one transaction.
func (s *RideService) Create(ctx context.Context, actorID uint64, in CreateRideInput) (*model.ScheduledRide, error) {
	in.Day = strings.ToUpper(strings.TrimSpace(in.Day))
	if err := s.validator.Struct(in); err != nil {
		return nil, validationFrom(err)
	}
	if _, err := s.routes.GetByID(ctx, in.RouteID); err != nil {
		if errors.Is(err, repository.ErrRouteNotFound) {
			return nil, &InvalidReferenceError{Kind: "route", IDs: []uint64{in.RouteID}}
		}
		return nil, internal("load route", err)
	}
	vehicle, err := s.vehicles.GetByID(ctx, in.VehicleID)
	if err != nil {
		if errors.Is(err, repository.ErrVehicleNotFound) {
			return nil, &InvalidReferenceError{Kind: "vehicle", IDs: []uint64{in.VehicleID}}
		}
		return nil, internal("load vehicle", err)
	}
	ok, err := s.users.Exists(ctx, in.DriverID, model.RoleDriver)
	if err != nil {
		return nil, internal("load driver", err)
	}
	if !ok {
		return nil, &InvalidReferenceError{Kind: "driver", IDs: []uint64{in.DriverID}}
	}

	ride := &model.ScheduledRide{
		RouteID:    in.RouteID,
		VehicleID:  in.VehicleID,
		DriverID:   in.DriverID,
		CreatedBy:  actorID,
		FareUSD:    in.FareUSD,
		FareSLSH:   in.FareSLSH,
		Day:        in.Day,
		StartTime:  in.StartTime.UTC(),
		EndTime:    in.EndTime.UTC(),
		TotalSeats: vehicle.Capacity,
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, internal("begin ride tx", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := s.rides.CreateTx(ctx, tx, ride); err != nil {
		return nil, internal("insert ride", err)
	}
	if err := s.seats.CreateForRideTx(ctx, tx, ride.ID, vehicle.Capacity); err != nil {
		return nil, internal("insert seats", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, internal("commit ride", err)
	}
	committed = true
	now := time.Now().UTC()
	ride.CreatedAt, ride.UpdatedAt = now, now

	if s.activity != nil {
		details, _ := json.Marshal(map[string]any{"route_id": ride.RouteID, "vehicle_id": ride.VehicleID, "total_seats": ride.TotalSeats})
		entry := &model.ActivityLog{UserID: actorID, Action: model.ActionRideCreated, TargetType: "schedule_ride", TargetID: ride.ID, Details: details}
		if err := s.activity.Create(ctx, entry); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Uint64("ride_id", ride.ID).Msg("activity log write failed")
		}
	}
	return ride, nil
}

// UpdateFareAndTime edits fares and times; the seat set is fixed.
func (s *RideService) UpdateFareAndTime(ctx context.Context, id uint64, in UpdateRideInput) (*model.ScheduledRide, error) {
	in.Day = strings.ToUpper(strings.TrimSpace(in.Day))
	if err := s.validator.Struct(in); err != nil {
		return nil, validationFrom(err)
	}
	err := s.rides.UpdateFareAndTime(ctx, id, in.FareUSD, in.FareSLSH, in.Day, in.StartTime, in.EndTime)
	if errors.Is(err, repository.ErrRideNotFound) {
		return nil, &NotFoundError{Resource: "ride", ID: id}
	}
	if err != nil {
		return nil, internal("update ride", err)
	}
	ride, err := s.rides.GetByID(ctx, id)
	if err != nil {
		return nil, internal("reload ride", err)
	}
	return ride, nil
}
