// internal/application/usecase/cart_merge_usecase.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"

	cartdom "essentia/internal/domain/cart"
)

var ErrMergeInvalidArgument = errors.New("cart_merge: invalid argument")

// CartMergeUsecase runs the one-time merge of an anonymous-session cart into
// the authenticated user's saved cart on login.
//
// Ordering contract: the login flow awaits MergeOnLogin before serving any
// authenticated cart mutation, so the merge acts as a barrier.
type CartMergeUsecase struct {
	users  cartdom.Repository
	guests cartdom.Repository
	clock  Clock
}

func NewCartMergeUsecase(users, guests cartdom.Repository) *CartMergeUsecase {
	return &CartMergeUsecase{users: users, guests: guests, clock: systemClock{}}
}

func NewCartMergeUsecaseWithClock(users, guests cartdom.Repository, clock Clock) *CartMergeUsecase {
	if clock == nil {
		clock = systemClock{}
	}
	return &CartMergeUsecase{users: users, guests: guests, clock: clock}
}

// MergeOnLogin reads the user's saved cart (empty if none) and the guest
// cart, sums quantities on (productId, sizeKey) matches, appends the rest,
// writes the merged list back as the authoritative user cart, and then
// deletes the guest record.
//
// Failure policy: if any read or the merged write fails, the guest cart is
// left untouched so it is not silently lost; the caller shows an error flag
// and an empty cart. There is no automatic retry. A failure of the final
// guest delete alone is logged, not returned: the merge itself is durable at
// that point and surfacing an error would make the UI discard it.
func (uc *CartMergeUsecase) MergeOnLogin(ctx context.Context, sessionID, userID string) (*cartdom.Cart, error) {
	guest := GuestSession(sessionID)
	user := UserSession(userID)
	if !guest.Valid() || !user.Valid() {
		return nil, ErrMergeInvalidArgument
	}

	now := uc.clock.Now()

	remote, err := uc.users.Get(ctx, user.Key())
	if err != nil {
		return nil, fmt.Errorf("cart_merge: read user cart: %w", err)
	}
	if remote == nil {
		remote, err = cartdom.New(user.Key(), nil, now)
		if err != nil {
			return nil, err
		}
	}

	local, err := uc.guests.Get(ctx, guest.Key())
	if err != nil {
		return nil, fmt.Errorf("cart_merge: read guest cart: %w", err)
	}
	if local == nil || len(local.Lines) == 0 {
		// Nothing to fold in; still drop an empty guest row if one exists.
		if local != nil {
			if derr := uc.guests.Delete(ctx, guest.Key()); derr != nil {
				log.Printf("[cart_merge] WARN: empty guest cart delete failed session=%s err=%v", guest.Key(), derr)
			}
		}
		return remote, nil
	}

	remote.Merge(local, now)

	if err := uc.users.Upsert(ctx, remote); err != nil {
		return nil, fmt.Errorf("cart_merge: write merged cart: %w", err)
	}

	if err := uc.guests.Delete(ctx, guest.Key()); err != nil {
		log.Printf("[cart_merge] WARN: guest cart delete failed after merge session=%s user=%s err=%v", guest.Key(), user.Key(), err)
	}

	return remote, nil
}
