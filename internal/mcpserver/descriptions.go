package mcpserver

// Tool descriptions with interpretation guidance for LLMs.

func describeCompareFiles() string {
	return `Scores how similar two source files are using Jaccard overlap of their units.

USE WHEN:
- Checking whether one file was copied from another
- Confirming a suspected duplicate before refactoring
- Comparing two revisions of the same file for structural drift

INTERPRETING RESULTS:
- similarity is a ratio in [0,1]; score holds the shared and union unit counts
- strategy "token" compares lower-cased identifiers, numbers and operators
- strategy "structure" compares function and class signatures
- outcome "extension_mismatch" or "unsupported_language" means no units were compared and the score is 0
- outcome "tool_error" means the external parser failed and the score is 0
- same_text is true when both files are identical after removing comments and whitespace
- Above 0.70 is high, above 0.40 medium

METRICS RETURNED:
- similarity, score (intersection, union), units_a, units_b
- shared units, language, provider, outcome, detail`
}

func describeCompareBatch() string {
	return `Compares every pair of files that share an extension and reports the suspicious pairs.

USE WHEN:
- Screening a directory of submissions for plagiarism
- Finding copy-pasted modules across a codebase
- Getting a similarity distribution before a closer review

INTERPRETING RESULTS:
- Pairs above threshold (default 0.30) are suspicious and listed highest first
- band is high (> 0.70), medium (> 0.40) or low
- Files with different extensions are never paired
- skipped lists files that could not be read or parsed, with the reason
- Summary mean, std_dev, p50 and p95 describe every compared pair, not only suspicious ones

METRICS RETURNED:
- pairs: file_a, file_b, language, similarity, band, same_text
- files: path, language and unit count
- summary: files, pairs, suspicious, high, medium, mean, std_dev, p50, p95, max`
}
