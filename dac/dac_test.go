package dac

import "testing"

// TestFirstIssuanceVerifies covers §8's "After IssueFirst, VerifyChain
// returns true" property across a few vector lengths.
func TestFirstIssuanceVerifies(t *testing.T) {
	for _, ell := range []int{2, 3, 4} {
		d, err := New(ell)
		if err != nil {
			t.Fatalf("New(%d) failed: %v", ell, err)
		}
		evenPK, evenSK, oddPK, oddSK, err := d.KeyGen()
		if err != nil {
			t.Fatalf("KeyGen failed: %v", err)
		}
		nymEven, _, nymOdd, _, err := d.NymGen(evenPK, evenSK, oddPK, oddSK)
		if err != nil {
			t.Fatalf("NymGen failed: %v", err)
		}
		_ = nymEven

		chain, err := d.IssueFirst(nymOdd)
		if err != nil {
			t.Fatalf("IssueFirst failed: %v", err)
		}
		ok, err := d.VerifyChain(chain)
		if err != nil {
			t.Fatalf("VerifyChain failed: %v", err)
		}
		if !ok {
			t.Fatalf("VerifyChain returned false after IssueFirst (ell=%d)", ell)
		}
		if len(chain.Nyms) != 1 || len(chain.Sigs) != 1 {
			t.Fatalf("chain should have exactly one link, got %d nyms / %d sigs", len(chain.Nyms), len(chain.Sigs))
		}
	}
}

// TestFiveUserChain reproduces §8's concrete end-to-end scenario for
// ell=3: five users delegate in sequence, alternating even/odd nyms,
// verifying at every step.
func TestFiveUserChain(t *testing.T) {
	d, err := New(3)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// User 1.
	evenPK1, evenSK1, oddPK1, oddSK1, err := d.KeyGen()
	if err != nil {
		t.Fatalf("user1 KeyGen failed: %v", err)
	}
	_, _, nymOdd1, skOdd1, err := d.NymGen(evenPK1, evenSK1, oddPK1, oddSK1)
	if err != nil {
		t.Fatalf("user1 NymGen failed: %v", err)
	}
	chain, err := d.IssueFirst(nymOdd1)
	if err != nil {
		t.Fatalf("IssueFirst failed: %v", err)
	}
	mustVerify(t, d, chain, 1)

	// User 2: appends an even (G1) nym, signed by user 1's odd secret.
	evenPK2, evenSK2, oddPK2, oddSK2, err := d.KeyGen()
	if err != nil {
		t.Fatalf("user2 KeyGen failed: %v", err)
	}
	nymEven2, skEven2, _, _, err := d.NymGen(evenPK2, evenSK2, oddPK2, oddSK2)
	if err != nil {
		t.Fatalf("user2 NymGen failed: %v", err)
	}
	chain, err = d.IssueNext(chain, nymEven2, DelegatorFromMSA(skOdd1))
	if err != nil {
		t.Fatalf("IssueNext (user2) failed: %v", err)
	}
	mustVerify(t, d, chain, 2)

	// User 3: appends an odd (G2) nym, signed by user 2's even secret.
	evenPK3, evenSK3, oddPK3, oddSK3, err := d.KeyGen()
	if err != nil {
		t.Fatalf("user3 KeyGen failed: %v", err)
	}
	_, _, nymOdd3, skOdd3, err := d.NymGen(evenPK3, evenSK3, oddPK3, oddSK3)
	if err != nil {
		t.Fatalf("user3 NymGen failed: %v", err)
	}
	chain, err = d.IssueNext(chain, nymOdd3, DelegatorFromMSB(skEven2))
	if err != nil {
		t.Fatalf("IssueNext (user3) failed: %v", err)
	}
	mustVerify(t, d, chain, 3)

	// User 4: appends an even (G1) nym, signed by user 3's odd secret.
	evenPK4, evenSK4, oddPK4, oddSK4, err := d.KeyGen()
	if err != nil {
		t.Fatalf("user4 KeyGen failed: %v", err)
	}
	nymEven4, skEven4, _, _, err := d.NymGen(evenPK4, evenSK4, oddPK4, oddSK4)
	if err != nil {
		t.Fatalf("user4 NymGen failed: %v", err)
	}
	chain, err = d.IssueNext(chain, nymEven4, DelegatorFromMSA(skOdd3))
	if err != nil {
		t.Fatalf("IssueNext (user4) failed: %v", err)
	}
	mustVerify(t, d, chain, 4)

	// User 5: appends an odd (G2) nym, signed by user 4's even secret.
	evenPK5, evenSK5, oddPK5, oddSK5, err := d.KeyGen()
	if err != nil {
		t.Fatalf("user5 KeyGen failed: %v", err)
	}
	_, _, nymOdd5, _, err := d.NymGen(evenPK5, evenSK5, oddPK5, oddSK5)
	if err != nil {
		t.Fatalf("user5 NymGen failed: %v", err)
	}
	chain, err = d.IssueNext(chain, nymOdd5, DelegatorFromMSB(skEven4))
	if err != nil {
		t.Fatalf("IssueNext (user5) failed: %v", err)
	}
	mustVerify(t, d, chain, 5)
}

func mustVerify(t *testing.T, d *DAC, chain *Chain, step int) {
	t.Helper()
	if len(chain.Nyms) != step || len(chain.Sigs) != step {
		t.Fatalf("step %d: expected chain of length %d, got %d nyms / %d sigs", step, step, len(chain.Nyms), len(chain.Sigs))
	}
	ok, err := d.VerifyChain(chain)
	if err != nil {
		t.Fatalf("step %d: VerifyChain failed: %v", step, err)
	}
	if !ok {
		t.Fatalf("step %d: VerifyChain returned false", step)
	}
}

// TestWrongDelegatorSchemeRejected checks that IssueNext refuses a
// delegator key from the wrong scheme rather than silently producing an
// unverifiable chain.
func TestWrongDelegatorSchemeRejected(t *testing.T) {
	d, err := New(2)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	evenPK1, evenSK1, oddPK1, oddSK1, err := d.KeyGen()
	if err != nil {
		t.Fatalf("KeyGen failed: %v", err)
	}
	_, _, nymOdd1, _, err := d.NymGen(evenPK1, evenSK1, oddPK1, oddSK1)
	if err != nil {
		t.Fatalf("NymGen failed: %v", err)
	}
	chain, err := d.IssueFirst(nymOdd1)
	if err != nil {
		t.Fatalf("IssueFirst failed: %v", err)
	}

	evenPK2, evenSK2, oddPK2, oddSK2, err := d.KeyGen()
	if err != nil {
		t.Fatalf("KeyGen failed: %v", err)
	}
	nymEven2, _, _, _, err := d.NymGen(evenPK2, evenSK2, oddPK2, oddSK2)
	if err != nil {
		t.Fatalf("NymGen failed: %v", err)
	}

	// The chain's current parity calls for an MS-A delegator key;
	// wrapping a (nil, unused) key as MS-B should be rejected rather
	// than silently mis-dispatched.
	_, err = d.IssueNext(chain, nymEven2, DelegatorFromMSB(nil))
	if err == nil {
		t.Fatal("IssueNext should reject a delegator key of the wrong scheme")
	}
}
