package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"screencheck/pkg/fingerprint"
	"screencheck/pkg/imageio"
)

func newCompareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare <image-a> <image-b>",
		Short: "Compare the visual fingerprints of two images",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(args[0], args[1])
		},
	}
}

func runCompare(pathA, pathB string) error {
	a, err := imageio.DecodeFile(pathA)
	if err != nil {
		return err
	}
	b, err := imageio.DecodeFile(pathB)
	if err != nil {
		return err
	}

	ahashA := fingerprint.AverageHash(a.Img)
	ahashB := fingerprint.AverageHash(b.Img)
	dhashA := fingerprint.DifferenceHash(a.Img)
	dhashB := fingerprint.DifferenceHash(b.Img)

	fmt.Printf("%-12s %s\n", "ahash A:", ahashA)
	fmt.Printf("%-12s %s\n", "ahash B:", ahashB)
	fmt.Printf("%-12s %s\n", "dhash A:", dhashA)
	fmt.Printf("%-12s %s\n", "dhash B:", dhashB)

	ahashDist := fingerprint.HammingDistance(ahashA, ahashB)
	dhashDist := fingerprint.HammingDistance(dhashA, dhashB)
	duploScore := fingerprint.CompareImages(a.Img, b.Img)

	fmt.Printf("\nHamming distance (ahash): %d of %d bits\n", ahashDist, fingerprint.HashBits)
	fmt.Printf("Hamming distance (dhash): %d of %d bits\n", dhashDist, fingerprint.HashBits)
	fmt.Printf("duplo similarity score:   %.2f (below %.0f means near-identical)\n", duploScore, fingerprint.SimilarityThreshold)

	switch {
	case ahashDist == 0 && dhashDist == 0:
		printSuccess("Images are visually identical")
	case duploScore < fingerprint.SimilarityThreshold:
		printWarning("Images are near-duplicates")
	default:
		printInfo("Images differ")
	}
	return nil
}
