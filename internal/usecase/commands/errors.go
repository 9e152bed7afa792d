package commands

import "coach-booking/internal/pkg/errs"

var (
	ErrForbidden        = errs.Forbidden("You do not have access to this resource")
	ErrCoachOnly        = errs.Forbidden("Only coaches can perform this action")
	ErrAdminOnly        = errs.Forbidden("Only admins can perform this action")
	ErrRequesterOnly    = errs.Forbidden("Only clients can book sessions")
	ErrNotDiscountOwner = errs.Forbidden("Discount belongs to another coach")

	ErrSessionNotFound     = errs.NotFound("Session not found")
	ErrBookingTypeNotFound = errs.NotFound("Booking type not found")
	ErrTimeSlotNotFound    = errs.NotFound("Time slot not found")
	ErrDiscountNotFound    = errs.NotFound("Discount not found")
	ErrPaymentNotFound     = errs.NotFound("Payment not found")

	ErrSlotAlreadyBooked             = errs.Conflict("Time slot already booked")
	ErrSlotInUse                     = errs.Conflict("Time slot has an active session")
	ErrDuplicateDiscountCode         = errs.Conflict("Discount code already exists")
	ErrPaymentInProgress             = errs.Conflict("Payment in progress")
	ErrCaptureInProgress             = errs.Conflict("Capture already in progress")
	ErrSessionCancelledDuringCapture = errs.Conflict("Session was cancelled before capture completed")
	ErrPaymentClosedDuringCapture    = errs.Conflict("Payment was closed before capture completed")
	ErrIdempotencyInProgress         = errs.Conflict("Request with this idempotency key is in progress")
	ErrIdempotencyMismatch           = errs.Unprocessable("Idempotency key was used with a different request")

	ErrSessionNotOwned        = errs.BadRequest("Session does not belong to user")
	ErrAmountMismatch         = errs.BadRequest("Amount does not match session price")
	ErrNothingToPay           = errs.BadRequest("Session price is zero")
	ErrOrderCreationFailed    = errs.BadRequest("Failed to create payment order")
	ErrCaptureFailed          = errs.BadRequest("Payment capture failed")
	ErrCaptureAmountMismatch  = errs.BadRequest("Captured amount does not match session price")
	ErrPaymentSessionMismatch = errs.BadRequest("Payment does not belong to session")
	ErrSlotCoachMismatch      = errs.BadRequest("Time slot does not belong to the booking type's coach")
	ErrRefundFailed           = errs.BadRequest("Refund failed")
	ErrUseCancel              = errs.BadRequest("Use the cancel operation to cancel a session")
	ErrCalendarSessionMissing = errs.BadRequest("Session not found")
	ErrEventNotFound          = errs.BadRequest("Event not found")
	ErrCalendarFailed         = errs.BadRequest("Calendar provider request failed")
	ErrNoChanges              = errs.BadRequest("No changes provided")
)
